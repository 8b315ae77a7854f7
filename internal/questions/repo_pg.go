package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateBatch inserts a batch of questions in one transaction.
func (r *PGRepo) CreateBatch(ctx context.Context, items []Question) error {
	if len(items) == 0 {
		return nil
	}
	const query = `
INSERT INTO questions (
    id,
    topic_id,
    user_id,
    prompt,
    question_type,
    difficulty,
    choices,
    answer_key,
    explanation,
    bloom_level,
    estimated_minutes,
    source,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range items {
		choices, err := marshalStrings(q.Choices)
		if err != nil {
			return err
		}
		answerKey, err := marshalStrings(q.AnswerKey)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query,
			q.ID,
			nullableString(q.TopicID),
			nullableString(q.UserID),
			q.Prompt,
			q.Type,
			q.Difficulty,
			choices,
			answerKey,
			nullableString(q.Explanation),
			nullableString(q.BloomLevel),
			nullableInt(q.EstimatedMinutes),
			q.Source,
			q.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SelectForBucket returns up to limit questions matching the difficulty bucket.
func (r *PGRepo) SelectForBucket(ctx context.Context, topicID, difficulty, questionType string, limit int) ([]Question, error) {
	if limit <= 0 {
		return []Question{}, nil
	}

	query := `
SELECT id, topic_id, user_id, prompt, question_type, difficulty, choices, answer_key, explanation, bloom_level, estimated_minutes, source, created_at
FROM questions
WHERE topic_id = $1 AND difficulty = $2`
	args := []any{topicID, difficulty}
	if questionType != "" {
		query += fmt.Sprintf(" AND question_type = $%d", len(args)+1)
		args = append(args, questionType)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// GetByIDs returns questions for the given IDs.
func (r *PGRepo) GetByIDs(ctx context.Context, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return []Question{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`
SELECT id, topic_id, user_id, prompt, question_type, difficulty, choices, answer_key, explanation, bloom_level, estimated_minutes, source, created_at
FROM questions
WHERE id IN (%s)`, strings.Join(placeholders, ", "))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func scanQuestions(rows *sql.Rows) ([]Question, error) {
	out := []Question{}
	for rows.Next() {
		var q Question
		var topicID, userID, explanation, bloomLevel sql.NullString
		var estimatedMinutes sql.NullInt64
		var choices, answerKey []byte
		err := rows.Scan(
			&q.ID,
			&topicID,
			&userID,
			&q.Prompt,
			&q.Type,
			&q.Difficulty,
			&choices,
			&answerKey,
			&explanation,
			&bloomLevel,
			&estimatedMinutes,
			&q.Source,
			&q.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if topicID.Valid {
			q.TopicID = topicID.String
		}
		if userID.Valid {
			q.UserID = userID.String
		}
		if explanation.Valid {
			q.Explanation = explanation.String
		}
		if bloomLevel.Valid {
			q.BloomLevel = bloomLevel.String
		}
		if estimatedMinutes.Valid {
			q.EstimatedMinutes = int(estimatedMinutes.Int64)
		}
		if len(choices) > 0 {
			if err := json.Unmarshal(choices, &q.Choices); err != nil {
				return nil, err
			}
		}
		if len(answerKey) > 0 {
			if err := json.Unmarshal(answerKey, &q.AnswerKey); err != nil {
				return nil, err
			}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func marshalStrings(values []string) (any, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}
