package questions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Question
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Question)}
}

// CreateBatch stores a batch of questions.
func (r *MemoryRepo) CreateBatch(ctx context.Context, items []Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range items {
		r.data[q.ID] = q
	}
	return nil
}

// SelectForBucket returns up to limit questions matching the difficulty bucket.
func (r *MemoryRepo) SelectForBucket(ctx context.Context, topicID, difficulty, questionType string, limit int) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []Question{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []Question{}
	for _, q := range r.data {
		if q.TopicID != topicID || q.Difficulty != difficulty {
			continue
		}
		if questionType != "" && q.Type != questionType {
			continue
		}
		matched = append(matched, q)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// GetByIDs returns questions for the given IDs.
func (r *MemoryRepo) GetByIDs(ctx context.Context, ids []string) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Question{}
	for _, id := range ids {
		if q, ok := r.data[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}
