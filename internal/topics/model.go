package topics

import "time"

// DocumentTopic is a learning topic extracted from a source document.
type DocumentTopic struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"documentId"`
	UserID     string         `json:"-"`
	Title      string         `json:"title"`
	Position   int            `json:"position"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Chunk is a retrieval-sized slice of a topic's body text.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	TopicID    string    `json:"topicId"`
	Index      int       `json:"index"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}
