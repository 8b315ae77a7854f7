package rag

import "time"

// Query log statuses.
const (
	LogStatusOK        = "ok"
	LogStatusCacheHit  = "cache_hit"
	LogStatusNoContent = "no_content"
	LogStatusError     = "error"
)

// Hit is one retrieved chunk from the vector store.
type Hit struct {
	ChunkID    string  `json:"chunkId"`
	DocumentID string  `json:"documentId,omitempty"`
	TopicID    string  `json:"topicId,omitempty"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// QueryLog records one retrieval query for observability and audits.
type QueryLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Query      string    `json:"query"`
	Status     string    `json:"status"`
	HitCount   int       `json:"hitCount"`
	DurationMs float64   `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}
