package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPVectorClientQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/lectures/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		var req vectorQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Query != "newton" || req.TopK != 3 {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{
				{"id": "c1", "document_id": "d1", "topic_id": "t1", "content": "laws of motion", "score": 0.9},
			},
		})
	}))
	t.Cleanup(server.Close)

	client := NewHTTPVectorClient(server.URL, "secret", "lectures")
	hits, err := client.Query(context.Background(), "newton", 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hit count = %d, want 1", len(hits))
	}
	want := Hit{ChunkID: "c1", DocumentID: "d1", TopicID: "t1", Content: "laws of motion", Score: 0.9}
	if hits[0] != want {
		t.Fatalf("hit = %+v, want %+v", hits[0], want)
	}
}

func TestHTTPVectorClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewHTTPVectorClient(server.URL, "", "lectures")
	if _, err := client.Query(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error on HTTP 500")
	}
}

func TestHTTPVectorClientRequiresURL(t *testing.T) {
	client := &HTTPVectorClient{}
	if _, err := client.Query(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error when base URL missing")
	}
}
