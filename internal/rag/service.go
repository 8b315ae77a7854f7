package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"edu-backend/internal/shared/metrics"
	"edu-backend/internal/shared/telemetry"
)

var (
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNoIndexedContent signals that the store holds nothing relevant,
	// usually because no document has been extracted and indexed yet.
	ErrNoIndexedContent = errors.New("no indexed content")
)

const defaultTopK = 5

// Service contains business logic for retrieval queries.
type Service struct {
	Logs   Repo
	Vector VectorClient
	Cache  *Cache
}

// Search runs a retrieval query through the cache and vector store.
func (s *Service) Search(ctx context.Context, userID, query string, topK int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if s.Vector == nil {
		return nil, errors.New("vector store not configured")
	}

	metrics.IncRAGQuery()
	startedAt := time.Now()

	if hits, ok := s.Cache.Get(ctx, query, topK); ok {
		metrics.IncRAGCacheHit()
		s.log(ctx, userID, query, LogStatusCacheHit, len(hits), sinceMs(startedAt))
		return hits, nil
	}

	hits, err := s.Vector.Query(ctx, query, topK)
	elapsed := sinceMs(startedAt)
	metrics.ObserveRAGDurationMs(elapsed)
	if err != nil {
		s.log(ctx, userID, query, LogStatusError, 0, elapsed)
		return nil, fmt.Errorf("vector query: %w", err)
	}
	if len(hits) == 0 {
		s.log(ctx, userID, query, LogStatusNoContent, 0, elapsed)
		return nil, ErrNoIndexedContent
	}

	s.Cache.Set(ctx, query, topK, hits)
	s.log(ctx, userID, query, LogStatusOK, len(hits), elapsed)
	return hits, nil
}

// RecentQueries returns a user's recent query logs.
func (s *Service) RecentQueries(ctx context.Context, userID string, limit int) ([]QueryLog, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.Logs.ListLogsByUser(ctx, userID, limit)
}

func (s *Service) log(ctx context.Context, userID, query, status string, hitCount int, durationMs float64) {
	if s.Logs == nil {
		return
	}
	entry := QueryLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		Query:      query,
		Status:     status,
		HitCount:   hitCount,
		DurationMs: durationMs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Logs.CreateLog(ctx, entry); err != nil {
		telemetry.Warn("rag.log_failed", map[string]any{
			"user_id": userID,
			"status":  status,
			"error":   err.Error(),
		})
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
