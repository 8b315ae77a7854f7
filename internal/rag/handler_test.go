package rag

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/shared/server/middleware"
)

func setupRAGRouter(t *testing.T, vector VectorClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &Service{Logs: NewMemoryRepo(), Vector: vector}
	handler := NewHandler(svc)

	router := gin.New()
	router.Use(middleware.Auth("test"))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func doSearch(t *testing.T, router *gin.Engine, payload map[string]any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var envelope map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, envelope
}

func TestSearchEnvelopeOK(t *testing.T) {
	router := setupRAGRouter(t, &fakeVectorClient{hits: []Hit{{ChunkID: "c1", Content: "x", Score: 1}}})

	resp, envelope := doSearch(t, router, map[string]any{"query": "newton"})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if envelope["status"] != "OK" {
		t.Fatalf("envelope status = %v, want OK", envelope["status"])
	}
	if envelope["next_steps"] == nil {
		t.Fatalf("next_steps must always be present")
	}
}

func TestSearchEnvelopeNeedMoreInfo(t *testing.T) {
	router := setupRAGRouter(t, &fakeVectorClient{})

	resp, envelope := doSearch(t, router, map[string]any{"query": "  "})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if envelope["status"] != "NEED_MORE_INFO" {
		t.Fatalf("envelope status = %v, want NEED_MORE_INFO", envelope["status"])
	}
}

func TestSearchEnvelopeNeedCleanText(t *testing.T) {
	router := setupRAGRouter(t, &fakeVectorClient{hits: []Hit{}})

	resp, envelope := doSearch(t, router, map[string]any{"query": "anything"})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if envelope["status"] != "NEED_CLEAN_TEXT" {
		t.Fatalf("envelope status = %v, want NEED_CLEAN_TEXT", envelope["status"])
	}
}

func TestSearchEnvelopeError(t *testing.T) {
	router := setupRAGRouter(t, &fakeVectorClient{err: errors.New("connection refused")})

	resp, envelope := doSearch(t, router, map[string]any{"query": "anything"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.Code)
	}
	if envelope["status"] != "ERROR" {
		t.Fatalf("envelope status = %v, want ERROR", envelope["status"])
	}
}
