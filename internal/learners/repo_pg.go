package learners

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Get returns the profile for a user/topic pair.
func (r *PGRepo) Get(ctx context.Context, userID, topicID string) (Profile, error) {
	const query = `
SELECT user_id, topic_id, mastery, attempt_count, correct_count, last_attempt_at, updated_at
FROM learner_profiles
WHERE user_id = $1 AND topic_id = $2
LIMIT 1`

	var p Profile
	var lastAttemptAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID, topicID).Scan(
		&p.UserID,
		&p.TopicID,
		&p.Mastery,
		&p.AttemptCount,
		&p.CorrectCount,
		&lastAttemptAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if lastAttemptAt.Valid {
		t := lastAttemptAt.Time
		p.LastAttemptAt = &t
	}
	return p, nil
}

// ListByUser returns all topic profiles for a user.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Profile, error) {
	const query = `
SELECT user_id, topic_id, mastery, attempt_count, correct_count, last_attempt_at, updated_at
FROM learner_profiles
WHERE user_id = $1
ORDER BY updated_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		var p Profile
		var lastAttemptAt sql.NullTime
		if err := rows.Scan(&p.UserID, &p.TopicID, &p.Mastery, &p.AttemptCount, &p.CorrectCount, &lastAttemptAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if lastAttemptAt.Valid {
			t := lastAttemptAt.Time
			p.LastAttemptAt = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert writes a profile, replacing the existing row for the user/topic pair.
func (r *PGRepo) Upsert(ctx context.Context, profile Profile) error {
	const query = `
INSERT INTO learner_profiles (user_id, topic_id, mastery, attempt_count, correct_count, last_attempt_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id, topic_id) DO UPDATE SET
    mastery = EXCLUDED.mastery,
    attempt_count = EXCLUDED.attempt_count,
    correct_count = EXCLUDED.correct_count,
    last_attempt_at = EXCLUDED.last_attempt_at,
    updated_at = EXCLUDED.updated_at`

	var lastAttemptAt sql.NullTime
	if profile.LastAttemptAt != nil {
		lastAttemptAt = sql.NullTime{Time: *profile.LastAttemptAt, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		profile.UserID,
		profile.TopicID,
		profile.Mastery,
		profile.AttemptCount,
		profile.CorrectCount,
		lastAttemptAt,
		profile.UpdatedAt,
	)
	return err
}
