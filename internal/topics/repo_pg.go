package topics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateTopics inserts extracted topics in one transaction.
func (r *PGRepo) CreateTopics(ctx context.Context, items []DocumentTopic) error {
	if len(items) == 0 {
		return nil
	}
	const query = `
INSERT INTO document_topics (id, document_id, user_id, title, position, metadata_json, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range items {
		metadata, err := nullableJSON(t.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, t.ID, t.DocumentID, t.UserID, t.Title, t.Position, metadata, t.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CreateChunks inserts topic chunks in one transaction.
func (r *PGRepo) CreateChunks(ctx context.Context, items []Chunk) error {
	if len(items) == 0 {
		return nil
	}
	const query = `
INSERT INTO document_chunks (id, document_id, topic_id, chunk_index, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range items {
		var topicID sql.NullString
		if c.TopicID != "" {
			topicID = sql.NullString{String: c.TopicID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query, c.ID, c.DocumentID, topicID, c.Index, c.Content, c.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByDocument returns a document's topics ordered by position.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]DocumentTopic, error) {
	const query = `
SELECT id, document_id, user_id, title, position, metadata_json, created_at
FROM document_topics
WHERE document_id = $1
ORDER BY position ASC`

	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DocumentTopic{}
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, topic)
	}
	return out, rows.Err()
}

// GetByID returns a single topic.
func (r *PGRepo) GetByID(ctx context.Context, topicID string) (DocumentTopic, error) {
	const query = `
SELECT id, document_id, user_id, title, position, metadata_json, created_at
FROM document_topics
WHERE id = $1
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, topicID)
	topic, err := scanTopic(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocumentTopic{}, ErrNotFound
		}
		return DocumentTopic{}, err
	}
	return topic, nil
}

// ChunksByTopic returns a topic's chunks in order.
func (r *PGRepo) ChunksByTopic(ctx context.Context, topicID string) ([]Chunk, error) {
	const query = `
SELECT id, document_id, topic_id, chunk_index, content, created_at
FROM document_chunks
WHERE topic_id = $1
ORDER BY chunk_index ASC`

	rows, err := r.DB.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Chunk{}
	for rows.Next() {
		var c Chunk
		var topic sql.NullString
		if err := rows.Scan(&c.ID, &c.DocumentID, &topic, &c.Index, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		if topic.Valid {
			c.TopicID = topic.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (DocumentTopic, error) {
	var t DocumentTopic
	var metadata []byte
	if err := row.Scan(&t.ID, &t.DocumentID, &t.UserID, &t.Title, &t.Position, &metadata, &t.CreatedAt); err != nil {
		return DocumentTopic{}, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return DocumentTopic{}, err
		}
	}
	return t, nil
}

func nullableJSON(value map[string]any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return data, nil
}
