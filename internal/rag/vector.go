package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VectorClient queries an external vector store for relevant chunks.
type VectorClient interface {
	Query(ctx context.Context, query string, topK int) ([]Hit, error)
}

// HTTPVectorClient talks to a vector store over HTTP JSON.
type HTTPVectorClient struct {
	BaseURL    string
	APIKey     string
	Collection string
	HTTPClient *http.Client
}

// NewHTTPVectorClient constructs a client with a default timeout.
func NewHTTPVectorClient(baseURL, apiKey, collection string) *HTTPVectorClient {
	return &HTTPVectorClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Collection: collection,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type vectorQueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type vectorQueryResponse struct {
	Hits []struct {
		ID         string  `json:"id"`
		DocumentID string  `json:"document_id"`
		TopicID    string  `json:"topic_id"`
		Content    string  `json:"content"`
		Score      float64 `json:"score"`
	} `json:"hits"`
}

// Query runs a similarity search against the configured collection.
func (c *HTTPVectorClient) Query(ctx context.Context, query string, topK int) ([]Hit, error) {
	if c.BaseURL == "" {
		return nil, errors.New("vector store url not configured")
	}
	if topK <= 0 {
		topK = 5
	}

	payload, err := json.Marshal(vectorQueryRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/collections/%s/query", c.BaseURL, c.Collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector store request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("vector store read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector store http status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed vectorQueryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("vector store decode: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits))
	for _, h := range parsed.Hits {
		hits = append(hits, Hit{
			ChunkID:    h.ID,
			DocumentID: h.DocumentID,
			TopicID:    h.TopicID,
			Content:    h.Content,
			Score:      h.Score,
		})
	}
	return hits, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
