package rag

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/shared/server/middleware"
	"edu-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the retrieval service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches retrieval routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/rag/search", h.search)
	rg.GET("/rag/queries", h.recentQueries)
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

func (h *Handler) search(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Orchestrated(c, http.StatusOK, respond.Envelope{
			Status:    respond.StatusNeedMoreInfo,
			Action:    "rag_search",
			Message:   "Send a JSON body with a query field.",
			Data:      gin.H{},
			NextSteps: []string{"Provide a non-empty query and retry."},
		})
		return
	}

	hits, err := h.Svc.Search(c.Request.Context(), userID, req.Query, req.TopK)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuery):
			respond.Orchestrated(c, http.StatusOK, respond.Envelope{
				Status:    respond.StatusNeedMoreInfo,
				Action:    "rag_search",
				Message:   "The query is empty.",
				Data:      gin.H{},
				NextSteps: []string{"Provide a non-empty query and retry."},
			})
		case errors.Is(err, ErrNoIndexedContent):
			respond.Orchestrated(c, http.StatusOK, respond.Envelope{
				Status:    respond.StatusNeedCleanText,
				Action:    "rag_search",
				Message:   "No indexed content matched this query.",
				Data:      gin.H{"hits": []Hit{}},
				NextSteps: []string{"Upload a document and run topic extraction, then retry."},
			})
		default:
			respond.Orchestrated(c, http.StatusBadGateway, respond.Envelope{
				Status:    respond.StatusError,
				Action:    "rag_search",
				Message:   "The retrieval backend failed.",
				Data:      gin.H{},
				NextSteps: []string{"Retry later."},
			})
		}
		return
	}

	respond.Orchestrated(c, http.StatusOK, respond.Envelope{
		Status:  respond.StatusOK,
		Action:  "rag_search",
		Message: "Retrieved matching content.",
		Data:    gin.H{"hits": hits},
	})
}

func (h *Handler) recentQueries(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)
	logs, err := h.Svc.RecentQueries(c.Request.Context(), userID, 20)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list queries", nil)
		return
	}

	respond.JSON(c, http.StatusOK, logs)
}
