package exams

import (
	"context"
	"time"
)

// Repo defines persistence operations for quiz sets and attempts.
type Repo interface {
	Create(ctx context.Context, qs QuizSet) error
	GetByID(ctx context.Context, quizSetID string) (QuizSet, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]QuizSet, error)
	UpdateStatus(ctx context.Context, quizSetID, status string, errorCode, errorMessage *string, startedAt, completedAt *time.Time) error
	SetQuestions(ctx context.Context, quizSetID string, questionIDs []string) error
	QuestionIDs(ctx context.Context, quizSetID string) ([]string, error)
	CreateAttempt(ctx context.Context, attempt Attempt) error
	AttemptsByQuizSet(ctx context.Context, quizSetID string) ([]Attempt, error)
}
