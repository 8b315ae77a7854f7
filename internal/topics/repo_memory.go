package topics

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	topics map[string]DocumentTopic
	chunks map[string][]Chunk // topicID -> chunks
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		topics: make(map[string]DocumentTopic),
		chunks: make(map[string][]Chunk),
	}
}

// CreateTopics stores extracted topics.
func (r *MemoryRepo) CreateTopics(ctx context.Context, items []DocumentTopic) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range items {
		r.topics[t.ID] = t
	}
	return nil
}

// CreateChunks stores topic chunks.
func (r *MemoryRepo) CreateChunks(ctx context.Context, items []Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range items {
		r.chunks[c.TopicID] = append(r.chunks[c.TopicID], c)
	}
	return nil
}

// ListByDocument returns a document's topics ordered by position.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]DocumentTopic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []DocumentTopic{}
	for _, t := range r.topics {
		if t.DocumentID == documentID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// GetByID returns a single topic.
func (r *MemoryRepo) GetByID(ctx context.Context, topicID string) (DocumentTopic, error) {
	if err := ctx.Err(); err != nil {
		return DocumentTopic{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[topicID]
	if !ok {
		return DocumentTopic{}, ErrNotFound
	}
	return t, nil
}

// ChunksByTopic returns a topic's chunks in order.
func (r *MemoryRepo) ChunksByTopic(ctx context.Context, topicID string) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	chunks := append([]Chunk(nil), r.chunks[topicID]...)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}
