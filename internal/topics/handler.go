package topics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/documents"
	"edu-backend/internal/shared/server/middleware"
	"edu-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches topic routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/topics/extract", h.extract)
	rg.GET("/documents/:id/topics", h.list)
}

func (h *Handler) extract(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	topics, err := h.Svc.Extract(c.Request.Context(), userID, documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to extract topics", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{"topics": topics})
}

func (h *Handler) list(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	topics, err := h.Svc.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list topics", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"topics": topics})
}
