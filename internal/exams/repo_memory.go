package exams

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for tests and local development.
type MemoryRepo struct {
	mu        sync.Mutex
	quizSets  map[string]QuizSet
	questions map[string][]string
	attempts  map[string][]Attempt
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		quizSets:  map[string]QuizSet{},
		questions: map[string][]string{},
		attempts:  map[string][]Attempt{},
	}
}

// Create stores a new quiz set.
func (r *MemoryRepo) Create(ctx context.Context, qs QuizSet) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizSets[qs.ID] = qs
	return nil
}

// GetByID returns a quiz set by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, quizSetID string) (QuizSet, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	qs, ok := r.quizSets[quizSetID]
	if !ok {
		return QuizSet{}, ErrNotFound
	}
	return qs, nil
}

// ListByUser returns quiz sets for a user ordered newest-first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]QuizSet, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []QuizSet{}
	for _, qs := range r.quizSets {
		if qs.UserID == userID {
			out = append(out, qs)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []QuizSet{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus transitions a quiz set's generation status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, quizSetID, status string, errorCode, errorMessage *string, startedAt, completedAt *time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	qs, ok := r.quizSets[quizSetID]
	if !ok {
		return ErrNotFound
	}
	qs.Status = status
	if errorCode != nil {
		qs.ErrorCode = *errorCode
	}
	if errorMessage != nil {
		qs.ErrorMessage = *errorMessage
	}
	if startedAt != nil {
		t := *startedAt
		qs.StartedAt = &t
	}
	if completedAt != nil {
		t := *completedAt
		qs.CompletedAt = &t
	}
	r.quizSets[quizSetID] = qs
	return nil
}

// SetQuestions replaces the ordered question membership of a quiz set.
func (r *MemoryRepo) SetQuestions(ctx context.Context, quizSetID string, questionIDs []string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(questionIDs))
	copy(ids, questionIDs)
	r.questions[quizSetID] = ids
	return nil
}

// QuestionIDs returns the quiz set's question IDs in position order.
func (r *MemoryRepo) QuestionIDs(ctx context.Context, quizSetID string) ([]string, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.questions[quizSetID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// ClaimGuest reassigns quiz sets and attempts from a guest user to an
// authenticated user, returning the number of quiz sets moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := 0
	for id, qs := range r.quizSets {
		if qs.UserID == guestUserID {
			qs.UserID = authedUserID
			r.quizSets[id] = qs
			moved++
		}
	}
	for quizSetID, items := range r.attempts {
		for i := range items {
			if items[i].UserID == guestUserID {
				items[i].UserID = authedUserID
			}
		}
		r.attempts[quizSetID] = items
	}
	return moved, nil
}

// CreateAttempt stores a graded attempt.
func (r *MemoryRepo) CreateAttempt(ctx context.Context, attempt Attempt) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.QuizSetID] = append(r.attempts[attempt.QuizSetID], attempt)
	return nil
}

// AttemptsByQuizSet returns attempts for a quiz set, newest first.
func (r *MemoryRepo) AttemptsByQuizSet(ctx context.Context, quizSetID string) ([]Attempt, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.attempts[quizSetID]
	out := make([]Attempt, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
