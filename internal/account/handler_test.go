package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/documents"
	"edu-backend/internal/exams"
)

func setupClaimRouter(docRepo documents.DocumentsRepo, quizRepo exams.Repo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(docRepo, quizRepo)
	handler := NewHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func TestClaimGuestMigratesData(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	quizRepo := exams.NewMemoryRepo()
	router := setupClaimRouter(docRepo, quizRepo)

	guestID := "11111111-1111-1111-1111-111111111111"
	guestUserID := "guest:" + guestID

	doc := documents.Document{
		ID:        "doc-1",
		UserID:    guestUserID,
		FileName:  "lecture.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 123,
		CreatedAt: time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	qs := exams.QuizSet{
		ID:           "quiz-set-1",
		UserID:       guestUserID,
		TemplateName: "posttest_standard",
		Status:       exams.StatusCompleted,
		CreatedAt:    time.Now().UTC(),
	}
	if err := quizRepo.Create(context.Background(), qs); err != nil {
		t.Fatalf("create quiz set: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	docs, err := docRepo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 migrated doc, got %d", len(docs))
	}

	quizSets, err := quizRepo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list quiz sets: %v", err)
	}
	if len(quizSets) != 1 {
		t.Fatalf("expected 1 migrated quiz set, got %d", len(quizSets))
	}
}

func TestClaimGuestIdempotentAndIsolated(t *testing.T) {
	docRepo := documents.NewMemoryRepo()
	quizRepo := exams.NewMemoryRepo()
	router := setupClaimRouter(docRepo, quizRepo)

	guestID := "22222222-2222-2222-2222-222222222222"
	guestUserID := "guest:" + guestID

	otherGuestUserID := "guest:33333333-3333-3333-3333-333333333333"
	otherDoc := documents.Document{
		ID:        "doc-other",
		UserID:    otherGuestUserID,
		FileName:  "notes.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 55,
		CreatedAt: time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), otherDoc); err != nil {
		t.Fatalf("create other document: %v", err)
	}

	doc := documents.Document{
		ID:        "doc-2",
		UserID:    guestUserID,
		FileName:  "lecture.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 123,
		CreatedAt: time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
		req.Header.Set("X-Guest-Id", guestID)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("claim %d: expected status 200, got %d", i, resp.Code)
		}
	}

	docs, err := docRepo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 migrated doc after repeat claim, got %d", len(docs))
	}

	otherDocs, err := docRepo.ListByUser(context.Background(), otherGuestUserID, 10, 0)
	if err != nil {
		t.Fatalf("list other guest docs: %v", err)
	}
	if len(otherDocs) != 1 {
		t.Fatalf("expected other guest data untouched, got %d docs", len(otherDocs))
	}
}

func TestClaimGuestRequiresHeader(t *testing.T) {
	router := setupClaimRouter(documents.NewMemoryRepo(), exams.NewMemoryRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
