package exams

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new quiz set.
func (r *PGRepo) Create(ctx context.Context, qs QuizSet) error {
	const query = `
INSERT INTO quiz_sets (
    id,
    user_id,
    topic_id,
    template_name,
    status,
    easy_count,
    medium_count,
    hard_mcq_count,
    hard_count,
    is_final_exam,
    duration_seconds,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var topicID sql.NullString
	if qs.TopicID != "" {
		topicID = sql.NullString{String: qs.TopicID, Valid: true}
	}
	var duration sql.NullInt64
	if qs.DurationSeconds > 0 {
		duration = sql.NullInt64{Int64: int64(qs.DurationSeconds), Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		qs.ID,
		qs.UserID,
		topicID,
		qs.TemplateName,
		qs.Status,
		qs.Counts.EasyCount,
		qs.Counts.MediumCount,
		qs.Counts.HardMCQCount,
		qs.Counts.HardCount,
		qs.IsFinalExam,
		duration,
		qs.CreatedAt,
	)
	return err
}

// GetByID returns a quiz set by ID.
func (r *PGRepo) GetByID(ctx context.Context, quizSetID string) (QuizSet, error) {
	const query = `
SELECT id, user_id, topic_id, template_name, status, easy_count, medium_count, hard_mcq_count, hard_count,
       is_final_exam, duration_seconds, error_code, error_message, started_at, completed_at, created_at
FROM quiz_sets
WHERE id = $1
LIMIT 1`

	qs, err := scanQuizSet(r.DB.QueryRowContext(ctx, query, quizSetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuizSet{}, ErrNotFound
		}
		return QuizSet{}, err
	}
	return qs, nil
}

// ListByUser returns quiz sets for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]QuizSet, error) {
	const query = `
SELECT id, user_id, topic_id, template_name, status, easy_count, medium_count, hard_mcq_count, hard_count,
       is_final_exam, duration_seconds, error_code, error_message, started_at, completed_at, created_at
FROM quiz_sets
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []QuizSet{}
	for rows.Next() {
		qs, err := scanQuizSet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, qs)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a quiz set's generation status.
func (r *PGRepo) UpdateStatus(ctx context.Context, quizSetID, status string, errorCode, errorMessage *string, startedAt, completedAt *time.Time) error {
	const query = `
UPDATE quiz_sets
SET status = $2,
    error_code = COALESCE($3, error_code),
    error_message = COALESCE($4, error_message),
    started_at = COALESCE($5, started_at),
    completed_at = COALESCE($6, completed_at)
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, quizSetID, status, errorCode, errorMessage, startedAt, completedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetQuestions replaces the ordered question membership of a quiz set.
func (r *PGRepo) SetQuestions(ctx context.Context, quizSetID string, questionIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_set_questions WHERE quiz_set_id = $1`, quizSetID); err != nil {
		return err
	}
	const insert = `INSERT INTO quiz_set_questions (quiz_set_id, question_id, position) VALUES ($1, $2, $3)`
	for i, questionID := range questionIDs {
		if _, err := tx.ExecContext(ctx, insert, quizSetID, questionID, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// QuestionIDs returns the quiz set's question IDs in position order.
func (r *PGRepo) QuestionIDs(ctx context.Context, quizSetID string) ([]string, error) {
	const query = `
SELECT question_id
FROM quiz_set_questions
WHERE quiz_set_id = $1
ORDER BY position ASC`

	rows, err := r.DB.QueryContext(ctx, query, quizSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CreateAttempt inserts a graded attempt.
func (r *PGRepo) CreateAttempt(ctx context.Context, attempt Attempt) error {
	const query = `
INSERT INTO attempts (id, quiz_set_id, user_id, answers, score, correct_count, question_count, explanation_json, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return err
	}
	explanations, err := json.Marshal(attempt.Explanations)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		attempt.ID,
		attempt.QuizSetID,
		attempt.UserID,
		answers,
		attempt.Score,
		attempt.CorrectCount,
		attempt.QuestionCount,
		explanations,
		attempt.SubmittedAt,
	)
	return err
}

// AttemptsByQuizSet returns attempts for a quiz set, newest first.
func (r *PGRepo) AttemptsByQuizSet(ctx context.Context, quizSetID string) ([]Attempt, error) {
	const query = `
SELECT id, quiz_set_id, user_id, answers, score, correct_count, question_count, explanation_json, submitted_at
FROM attempts
WHERE quiz_set_id = $1
ORDER BY submitted_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, quizSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var answers, explanations []byte
		if err := rows.Scan(&a.ID, &a.QuizSetID, &a.UserID, &answers, &a.Score, &a.CorrectCount, &a.QuestionCount, &explanations, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &a.Answers); err != nil {
				return nil, err
			}
		}
		if len(explanations) > 0 {
			if err := json.Unmarshal(explanations, &a.Explanations); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ClaimGuest reassigns quiz sets and attempts from a guest user to an
// authenticated user, returning the number of quiz sets moved.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE quiz_sets SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	moved, _ := res.RowsAffected()
	if _, err := r.DB.ExecContext(ctx, `UPDATE attempts SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID); err != nil {
		return 0, err
	}
	return int(moved), nil
}

type quizSetScanner interface {
	Scan(dest ...any) error
}

func scanQuizSet(row quizSetScanner) (QuizSet, error) {
	var qs QuizSet
	var topicID, errorCode, errorMessage sql.NullString
	var duration sql.NullInt64
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&qs.ID,
		&qs.UserID,
		&topicID,
		&qs.TemplateName,
		&qs.Status,
		&qs.Counts.EasyCount,
		&qs.Counts.MediumCount,
		&qs.Counts.HardMCQCount,
		&qs.Counts.HardCount,
		&qs.IsFinalExam,
		&duration,
		&errorCode,
		&errorMessage,
		&startedAt,
		&completedAt,
		&qs.CreatedAt,
	)
	if err != nil {
		return QuizSet{}, err
	}
	if topicID.Valid {
		qs.TopicID = topicID.String
	}
	if duration.Valid {
		qs.DurationSeconds = int(duration.Int64)
	}
	if errorCode.Valid {
		qs.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		qs.ErrorMessage = errorMessage.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		qs.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		qs.CompletedAt = &t
	}
	return qs, nil
}
