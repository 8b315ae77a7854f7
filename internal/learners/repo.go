package learners

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "learner profile not found" }

// Repo defines persistence operations for learner profiles.
type Repo interface {
	Get(ctx context.Context, userID, topicID string) (Profile, error)
	ListByUser(ctx context.Context, userID string) ([]Profile, error)
	Upsert(ctx context.Context, profile Profile) error
}
