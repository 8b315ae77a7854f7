package exams

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/shared/server/middleware"
	"edu-backend/internal/shared/server/respond"
	"edu-backend/internal/usage"
)

// Handler wires HTTP handlers to the quiz set service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches quiz set routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quiz-sets", h.createQuizSet)
	rg.GET("/quiz-sets", h.listQuizSets)
	rg.GET("/quiz-sets/:id", h.getQuizSet)
	rg.GET("/quiz-sets/:id/questions", h.getQuizSetQuestions)
	rg.POST("/quiz-sets/:id/attempts", h.submitAttempt)
	rg.GET("/quiz-sets/:id/attempts", h.listAttempts)
	rg.GET("/templates", h.listTemplates)
}

type createQuizSetRequest struct {
	TopicID      string `json:"topicId"`
	TemplateName string `json:"templateName"`
	IsFinalExam  bool   `json:"isFinalExam"`
}

func (h *Handler) createQuizSet(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createQuizSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	qs, err := h.Svc.Generate(c.Request.Context(), userID, req.TopicID, req.TemplateName, req.IsFinalExam)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownTemplate):
			respond.Error(c, http.StatusNotFound, "unknown_template", "template not found", []map[string]string{
				{"field": "templateName", "issue": "unknown"},
			})
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your generation limit. Upgrade your plan to continue.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start quiz generation", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"quizSetId":       qs.ID,
		"status":          qs.Status,
		"counts":          qs.Counts,
		"durationSeconds": qs.DurationSeconds,
	})
}

func (h *Handler) getQuizSet(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	quizSetID := c.Param("id")
	if quizSetID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "quiz set id is required", nil)
		return
	}

	qs, err := h.Svc.Get(c.Request.Context(), userID, quizSetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "quiz set not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch quiz set", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, qs)
}

func (h *Handler) getQuizSetQuestions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	quizSetID := c.Param("id")
	if quizSetID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "quiz set id is required", nil)
		return
	}

	items, err := h.Svc.QuizQuestions(c.Request.Context(), userID, quizSetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "quiz set not found", nil)
		case errors.Is(err, ErrNotReady):
			respond.Error(c, http.StatusConflict, "not_ready", "quiz set has not finished generating", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch questions", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"questions": items})
}

type submitAttemptRequest struct {
	Answers map[string][]string `json:"answers"`
}

func (h *Handler) submitAttempt(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	quizSetID := c.Param("id")
	if quizSetID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "quiz set id is required", nil)
		return
	}

	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Answers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "answers are required", []map[string]string{
			{"field": "answers", "issue": "required"},
		})
		return
	}

	attempt, err := h.Svc.SubmitAttempt(c.Request.Context(), userID, quizSetID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "quiz set not found", nil)
		case errors.Is(err, ErrNotReady):
			respond.Error(c, http.StatusConflict, "not_ready", "quiz set has not finished generating", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit attempt", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, attempt)
}

func (h *Handler) listAttempts(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	quizSetID := c.Param("id")
	if quizSetID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "quiz set id is required", nil)
		return
	}

	attempts, err := h.Svc.Attempts(c.Request.Context(), userID, quizSetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "quiz set not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list attempts", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, attempts)
}

func (h *Handler) listQuizSets(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	sets, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list quiz sets", nil)
		return
	}

	resp := make([]gin.H, 0, len(sets))
	for _, qs := range sets {
		resp = append(resp, gin.H{
			"quizSetId":    qs.ID,
			"topicId":      qs.TopicID,
			"templateName": qs.TemplateName,
			"status":       qs.Status,
			"counts":       qs.Counts,
			"isFinalExam":  qs.IsFinalExam,
			"createdAt":    qs.CreatedAt,
		})
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listTemplates(c *gin.Context) {
	names := TemplateNames()
	resp := make([]gin.H, 0, len(names))
	for _, name := range names {
		tmpl, _ := GetTemplate(name)
		counts := TemplateToAssessmentCounts(tmpl)
		resp = append(resp, gin.H{
			"name":   name,
			"counts": counts,
			"total":  counts.Total(),
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}
