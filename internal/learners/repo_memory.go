package learners

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for tests and local development.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]Profile
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: map[string]Profile{}}
}

func profileKey(userID, topicID string) string {
	return userID + "\x00" + topicID
}

// Get returns the profile for a user/topic pair.
func (r *MemoryRepo) Get(ctx context.Context, userID, topicID string) (Profile, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[profileKey(userID, topicID)]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// ListByUser returns all topic profiles for a user.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Profile, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Profile{}
	for _, p := range r.data {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Upsert writes a profile, replacing the existing entry for the user/topic pair.
func (r *MemoryRepo) Upsert(ctx context.Context, profile Profile) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[profileKey(profile.UserID, profile.TopicID)] = profile
	return nil
}
