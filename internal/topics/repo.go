package topics

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "topic not found" }

// Repo defines persistence operations for topics and chunks.
type Repo interface {
	CreateTopics(ctx context.Context, items []DocumentTopic) error
	CreateChunks(ctx context.Context, items []Chunk) error
	ListByDocument(ctx context.Context, documentID string) ([]DocumentTopic, error)
	GetByID(ctx context.Context, topicID string) (DocumentTopic, error)
	ChunksByTopic(ctx context.Context, topicID string) ([]Chunk, error)
}
