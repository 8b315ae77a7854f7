package questions

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "question not found" }

// Repo defines persistence operations for the question bank.
type Repo interface {
	CreateBatch(ctx context.Context, items []Question) error
	// SelectForBucket returns up to limit questions for a topic matching the
	// given difficulty. questionType narrows to mcq/open; empty means any form.
	SelectForBucket(ctx context.Context, topicID, difficulty, questionType string, limit int) ([]Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]Question, error)
}
