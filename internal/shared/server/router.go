package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/account"
	googleauth "edu-backend/internal/auth"
	"edu-backend/internal/documents"
	"edu-backend/internal/exams"
	"edu-backend/internal/learners"
	"edu-backend/internal/rag"
	"edu-backend/internal/shared/config"
	"edu-backend/internal/shared/metrics"
	"edu-backend/internal/shared/server/middleware"
	"edu-backend/internal/shared/server/respond"
	"edu-backend/internal/topics"
	"edu-backend/internal/uploads"
	"edu-backend/internal/usage"
	"edu-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	AccountHandler  *account.Handler
	DocumentHandler *documents.Handler
	QuizSetHandler  *exams.Handler
	TopicHandler    *topics.Handler
	LearnerHandler  *learners.Handler
	RAGHandler      *rag.Handler
	UsageHandler    *usage.Handler
	UserHandler     *users.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(rateLimits()),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.TopicHandler != nil {
		deps.TopicHandler.RegisterRoutes(api)
	}
	if deps.QuizSetHandler != nil {
		deps.QuizSetHandler.RegisterRoutes(api)
	}
	if deps.LearnerHandler != nil {
		deps.LearnerHandler.RegisterRoutes(api)
	}
	if deps.RAGHandler != nil {
		deps.RAGHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	if cfg.Env == "dev" && deps.UsageHandler != nil {
		dev := api.Group("/dev")
		deps.UsageHandler.RegisterDevRoutes(dev)
	}

	return r
}

// rateLimits allows status polling at a higher rate than mutations.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/quiz-sets/:id" {
				return "POLLING"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 2, Burst: 20},
			"POLLING": {Rate: 10, Burst: 30},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
