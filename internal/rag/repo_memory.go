package rag

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for tests and local development.
type MemoryRepo struct {
	mu   sync.Mutex
	logs []QueryLog
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// CreateLog stores a query log entry.
func (r *MemoryRepo) CreateLog(ctx context.Context, log QueryLog) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

// ListLogsByUser returns a user's recent query logs, newest first.
func (r *MemoryRepo) ListLogsByUser(ctx context.Context, userID string, limit int) ([]QueryLog, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []QueryLog{}
	for _, l := range r.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
