package rag

import (
	"context"
	"errors"
	"testing"
)

type fakeVectorClient struct {
	hits  []Hit
	err   error
	calls int
}

func (f *fakeVectorClient) Query(ctx context.Context, query string, topK int) ([]Hit, error) {
	_ = ctx
	_ = query
	_ = topK
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := &Service{Logs: NewMemoryRepo(), Vector: &fakeVectorClient{}}

	_, err := svc.Search(context.Background(), "user-1", "   ", 5)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestSearchReturnsHitsAndLogs(t *testing.T) {
	repo := NewMemoryRepo()
	vector := &fakeVectorClient{hits: []Hit{
		{ChunkID: "c1", TopicID: "topic-1", Content: "newton's laws", Score: 0.92},
		{ChunkID: "c2", TopicID: "topic-1", Content: "inertia", Score: 0.81},
	}}
	svc := &Service{Logs: repo, Vector: vector}

	hits, err := svc.Search(context.Background(), "user-1", "newton", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hit count = %d, want 2", len(hits))
	}

	logs, err := repo.ListLogsByUser(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("log count = %d, want 1", len(logs))
	}
	if logs[0].Status != LogStatusOK || logs[0].HitCount != 2 {
		t.Fatalf("log = %+v", logs[0])
	}
}

func TestSearchNoIndexedContent(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Logs: repo, Vector: &fakeVectorClient{hits: []Hit{}}}

	_, err := svc.Search(context.Background(), "user-1", "anything", 5)
	if !errors.Is(err, ErrNoIndexedContent) {
		t.Fatalf("expected ErrNoIndexedContent, got %v", err)
	}

	logs, _ := repo.ListLogsByUser(context.Background(), "user-1", 10)
	if len(logs) != 1 || logs[0].Status != LogStatusNoContent {
		t.Fatalf("expected one no_content log, got %+v", logs)
	}
}

func TestSearchVectorFailureLogsError(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Logs: repo, Vector: &fakeVectorClient{err: errors.New("connection refused")}}

	_, err := svc.Search(context.Background(), "user-1", "anything", 5)
	if err == nil || errors.Is(err, ErrNoIndexedContent) || errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected backend error, got %v", err)
	}

	logs, _ := repo.ListLogsByUser(context.Background(), "user-1", 10)
	if len(logs) != 1 || logs[0].Status != LogStatusError {
		t.Fatalf("expected one error log, got %+v", logs)
	}
}

func TestSearchWorksWithoutCache(t *testing.T) {
	vector := &fakeVectorClient{hits: []Hit{{ChunkID: "c1", Content: "x", Score: 1}}}
	svc := &Service{Logs: NewMemoryRepo(), Vector: vector, Cache: nil}

	if _, err := svc.Search(context.Background(), "user-1", "q", 5); err != nil {
		t.Fatalf("search without cache: %v", err)
	}
	// Nil-client cache is also a no-op.
	svc.Cache = &Cache{}
	if _, err := svc.Search(context.Background(), "user-1", "q", 5); err != nil {
		t.Fatalf("search with disabled cache: %v", err)
	}
	if vector.calls != 2 {
		t.Fatalf("vector calls = %d, want 2", vector.calls)
	}
}
