package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"edu-backend/internal/account"
	googleauth "edu-backend/internal/auth"
	"edu-backend/internal/documents"
	"edu-backend/internal/exams"
	"edu-backend/internal/learners"
	"edu-backend/internal/llm"
	openai "edu-backend/internal/llm/openai"
	"edu-backend/internal/questions"
	"edu-backend/internal/queue"
	"edu-backend/internal/rag"
	"edu-backend/internal/shared/config"
	"edu-backend/internal/shared/server"
	"edu-backend/internal/shared/storage/db"
	"edu-backend/internal/shared/storage/object"
	localstore "edu-backend/internal/shared/storage/object/local"
	s3store "edu-backend/internal/shared/storage/object/s3"
	"edu-backend/internal/topics"
	"edu-backend/internal/usage"
	"edu-backend/internal/users"
)

// App holds shared dependencies for the API server and queue workers.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client
	Cache  *rag.Cache

	DocumentsRepo documents.DocumentsRepo
	TopicsRepo    topics.Repo
	QuestionsRepo questions.Repo
	QuizRepo      exams.Repo
	LearnersRepo  learners.Repo
	RAGRepo       rag.Repo
	UsersRepo     users.Repo

	DocumentsService *documents.Service
	TopicsService    *topics.Service
	QuizService      *exams.Service
	LearnersService  *learners.Service
	RAGService       *rag.Service
	UsageService     *usage.Service
	UsersService     *users.Service
	AccountService   *account.Service

	// QuizProcessor allows callers to override quiz set processing for tests.
	QuizProcessor QuizProcessor

	DocumentsHandler *documents.Handler
	TopicsHandler    *topics.Handler
	QuizHandler      *exams.Handler
	LearnersHandler  *learners.Handler
	RAGHandler       *rag.Handler
	UsageHandler     *usage.Handler
	UsersHandler     *users.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// QuizProcessor assembles a queued quiz set synchronously.
type QuizProcessor interface {
	ProcessQuizSet(ctx context.Context, quizSetID string) error
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	cache, err := rag.NewCacheFromURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}

	app := &App{
		Config: cfg,
		Router: nil,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
		Cache:  cache,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AccountHandler:  app.AccountHandler,
		DocumentHandler: app.DocumentsHandler,
		QuizSetHandler:  app.QuizHandler,
		TopicHandler:    app.TopicsHandler,
		LearnerHandler:  app.LearnersHandler,
		RAGHandler:      app.RAGHandler,
		UsageHandler:    app.UsageHandler,
		UserHandler:     app.UsersHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("EDU_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var topicsRepo topics.Repo
	var questionsRepo questions.Repo
	var quizRepo exams.Repo
	var learnersRepo learners.Repo
	var ragRepo rag.Repo
	var userRepo users.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		topicsRepo = &topics.PGRepo{DB: app.DB}
		questionsRepo = &questions.PGRepo{DB: app.DB}
		quizRepo = &exams.PGRepo{DB: app.DB}
		learnersRepo = &learners.PGRepo{DB: app.DB}
		ragRepo = &rag.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		topicsRepo = topics.NewMemoryRepo()
		questionsRepo = questions.NewMemoryRepo()
		quizRepo = exams.NewMemoryRepo()
		learnersRepo = learners.NewMemoryRepo()
		ragRepo = rag.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	topicsSvc := &topics.Service{
		Repo:    topicsRepo,
		DocRepo: docRepo,
		Store:   app.Store,
	}

	docSvc := &documents.Service{
		Store:           app.Store,
		Repo:            docRepo,
		StorageProvider: app.Config.ObjectStoreType,
		Extractor:       topicsSvc,
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" && strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	}

	learnersSvc := &learners.Service{Repo: learnersRepo}

	quizSvc := &exams.Service{
		Repo:             quizRepo,
		Questions:        questionsRepo,
		Topics:           topicsRepo,
		Usage:            usageSvc,
		LLM:              llmClient,
		Profiles:         learnersSvc,
		JobQueue:         app.Queue,
		GeneratorVersion: app.Config.GeneratorVersion,
	}

	var vectorClient rag.VectorClient
	if strings.TrimSpace(app.Config.VectorStoreURL) != "" {
		vectorClient = rag.NewHTTPVectorClient(app.Config.VectorStoreURL, app.Config.VectorStoreAPIKey, app.Config.VectorCollection)
	}
	ragSvc := &rag.Service{
		Logs:   ragRepo,
		Vector: vectorClient,
		Cache:  app.Cache,
	}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)
	googleAuthSvc.Users = userSvc

	app.DocumentsRepo = docRepo
	app.TopicsRepo = topicsRepo
	app.QuestionsRepo = questionsRepo
	app.QuizRepo = quizRepo
	app.LearnersRepo = learnersRepo
	app.RAGRepo = ragRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.TopicsService = topicsSvc
	app.QuizService = quizSvc
	app.LearnersService = learnersSvc
	app.RAGService = ragSvc
	app.UsageService = usageSvc
	app.UsersService = userSvc
	app.AccountService = account.NewService(docRepo, quizRepo)
	app.QuizProcessor = quizSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.TopicsHandler = topics.NewHandler(topicsSvc)
	app.QuizHandler = exams.NewHandler(quizSvc)
	app.LearnersHandler = learners.NewHandler(learnersSvc)
	app.RAGHandler = rag.NewHandler(ragSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.GoogleAuth = googleAuthSvc

	if app.DocumentsHandler == nil || app.QuizHandler == nil || app.UsageHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
