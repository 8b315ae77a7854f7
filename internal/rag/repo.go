package rag

import "context"

// Repo defines persistence operations for query logs.
type Repo interface {
	CreateLog(ctx context.Context, log QueryLog) error
	ListLogsByUser(ctx context.Context, userID string, limit int) ([]QueryLog, error)
}
