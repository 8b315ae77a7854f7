package learners

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/shared/server/middleware"
	"edu-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the learner service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches learner profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/learners/me/profile", h.getProfile)
	rg.GET("/learners/me/profile/:topicId", h.getTopicProfile)
}

func (h *Handler) getProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	profiles, err := h.Svc.Profiles(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"topics": profiles})
}

func (h *Handler) getTopicProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	topicID := c.Param("topicId")
	if topicID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "topic id is required", nil)
		return
	}

	profile, err := h.Svc.Profile(c.Request.Context(), userID, topicID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no attempts recorded for this topic", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, profile)
}
