package rag

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateLog inserts a query log row.
func (r *PGRepo) CreateLog(ctx context.Context, log QueryLog) error {
	const query = `
INSERT INTO rag_query_logs (id, user_id, query, status, hit_count, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.Query,
		log.Status,
		log.HitCount,
		log.DurationMs,
		log.CreatedAt,
	)
	return err
}

// ListLogsByUser returns a user's recent query logs, newest first.
func (r *PGRepo) ListLogsByUser(ctx context.Context, userID string, limit int) ([]QueryLog, error) {
	const query = `
SELECT id, user_id, query, status, hit_count, duration_ms, created_at
FROM rag_query_logs
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []QueryLog{}
	for rows.Next() {
		var l QueryLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Query, &l.Status, &l.HitCount, &l.DurationMs, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
