package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"fieldguide/internal/config"
	"fieldguide/internal/handler"
	"fieldguide/internal/handler/sse"
	"fieldguide/internal/middleware"
	"fieldguide/internal/objstore"
	"fieldguide/internal/repository/postgres"
	"fieldguide/internal/service"
	"fieldguide/internal/service/llm"
	"fieldguide/internal/service/llm/providers/anthropic"
	"fieldguide/internal/service/llm/providers/lorem"
	"fieldguide/internal/session"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database connected")

	// Sessions
	sessionStore, err := session.NewRedisStore(cfg.RedisURL, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	// Object storage is optional; without it file uploads are rejected.
	var objStore *objstore.Store
	if cfg.MinioAccessKey != "" {
		objStore, err = objstore.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("Failed to connect to object store: %v", err)
		}
		logger.Info("object store connected", "bucket", cfg.MinioBucket)
	} else {
		logger.Warn("object store not configured, file uploads disabled")
	}

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	issueRepo := postgres.NewIssueRepository(repoConfig)
	searchRepo := postgres.NewSearchRepository(repoConfig)
	bookmarkRepo := postgres.NewBookmarkRepository(repoConfig)
	importRepo := postgres.NewContentImportRepository(repoConfig)
	adminRepo := postgres.NewAdminUserRepository(repoConfig)
	workspaceRepo := postgres.NewWorkspaceRepository(repoConfig)
	draftRepo := postgres.NewDraftRepository(repoConfig)
	revisionRepo := postgres.NewRevisionRepository(repoConfig)
	messageRepo := postgres.NewMessageRepository(repoConfig)
	suggestionRepo := postgres.NewSuggestionRepository(repoConfig)
	activityRepo := postgres.NewActivityRepository(repoConfig)
	resourceRepo := postgres.NewResourceRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// LLM providers
	registry := llm.NewRegistry()
	if cfg.AnthropicAPIKey != "" {
		anthropicProvider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			log.Fatalf("Failed to create anthropic provider: %v", err)
		}
		registry.Register(anthropicProvider)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, claude models unavailable")
	}
	registry.Register(lorem.NewProvider())

	// Services
	searchService := service.NewSearchService(searchRepo, logger)
	issueService := service.NewIssueService(issueRepo, searchService, logger)
	bookmarkService := service.NewBookmarkService(bookmarkRepo, logger)
	importService := service.NewContentImportService(importRepo, logger)
	authService := service.NewAuthService(adminRepo, sessionStore, logger)
	workspaceService := service.NewWorkspaceService(workspaceRepo, draftRepo, activityRepo, txManager, logger)
	draftService := service.NewDraftService(draftRepo, activityRepo, logger)
	revisionService := service.NewRevisionService(revisionRepo, draftRepo, activityRepo, txManager, logger)
	suggestionService := service.NewSuggestionService(suggestionRepo, draftRepo, revisionRepo, activityRepo, txManager, logger)
	publishService := service.NewPublishService(workspaceRepo, draftRepo, issueRepo, activityRepo, searchService, txManager, logger)
	resourceService := service.NewResourceService(resourceRepo, workspaceRepo, activityRepo, objStore, logger)
	chatService := llm.NewChatService(registry, issueRepo, workspaceRepo, draftRepo, messageRepo, activityRepo, cfg.DefaultModel, logger)
	transformService := llm.NewTransformService(registry, cfg.DefaultModel, logger)

	// Handlers
	sseConfig := sse.DefaultConfig()
	authHandler := handler.NewAuthHandler(authService, logger)
	issueHandler := handler.NewIssueHandler(issueService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)
	bookmarkHandler := handler.NewBookmarkHandler(bookmarkService, logger)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, publishService, logger)
	draftHandler := handler.NewDraftHandler(draftService, revisionService, logger)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService, logger)
	resourceHandler := handler.NewResourceHandler(resourceService, logger)
	chatHandler := handler.NewChatHandler(chatService, sseConfig, logger)
	importHandler := handler.NewImportHandler(importService, transformService, sseConfig, logger)

	logger.Info("services initialized")

	// Public routes (Go 1.22+ method patterns)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /chat", chatHandler.ReaderChat)
	mux.HandleFunc("POST /api/search", searchHandler.Search)
	mux.HandleFunc("GET /api/search/suggestions", searchHandler.Suggest)
	mux.HandleFunc("GET /api/issues", issueHandler.List)
	mux.HandleFunc("GET /api/issues/{slug}", issueHandler.Get)
	mux.HandleFunc("POST /api/bookmarks", bookmarkHandler.Create)
	mux.HandleFunc("GET /api/bookmarks", bookmarkHandler.List)
	mux.HandleFunc("POST /api/bookmarks/check", bookmarkHandler.Check)
	mux.HandleFunc("DELETE /api/bookmarks/{id}", bookmarkHandler.Delete)

	mux.HandleFunc("POST /api/admin/login", authHandler.Login)

	// Admin routes behind bearer-token auth
	admin := http.NewServeMux()
	admin.HandleFunc("POST /api/admin/logout", authHandler.Logout)

	admin.HandleFunc("POST /api/admin/issues", issueHandler.Create)
	admin.HandleFunc("PATCH /api/admin/issues/{slug}", issueHandler.Update)
	admin.HandleFunc("DELETE /api/admin/issues/{slug}", issueHandler.Delete)

	admin.HandleFunc("POST /api/admin/imports", importHandler.Create)
	admin.HandleFunc("GET /api/admin/imports", importHandler.List)
	admin.HandleFunc("POST /api/admin/transform", importHandler.Transform)

	admin.HandleFunc("POST /api/admin/workspaces", workspaceHandler.Create)
	admin.HandleFunc("GET /api/admin/workspaces", workspaceHandler.List)
	admin.HandleFunc("GET /api/admin/workspaces/{id}", workspaceHandler.Get)
	admin.HandleFunc("PATCH /api/admin/workspaces/{id}", workspaceHandler.Update)
	admin.HandleFunc("DELETE /api/admin/workspaces/{id}", workspaceHandler.Delete)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/complete", workspaceHandler.Complete)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/publish", workspaceHandler.Publish)
	admin.HandleFunc("GET /api/admin/workspaces/{id}/activities", workspaceHandler.Activities)

	admin.HandleFunc("GET /api/admin/workspaces/{id}/draft", draftHandler.Get)
	admin.HandleFunc("PATCH /api/admin/workspaces/{id}/draft", draftHandler.Update)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/draft/sections", draftHandler.AddSection)
	admin.HandleFunc("PATCH /api/admin/workspaces/{id}/draft/sections/{sectionId}", draftHandler.UpdateSection)

	admin.HandleFunc("POST /api/admin/workspaces/{id}/revisions", draftHandler.CreateRevision)
	admin.HandleFunc("GET /api/admin/workspaces/{id}/revisions", draftHandler.ListRevisions)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/revisions/{number}/restore", draftHandler.RestoreRevision)

	admin.HandleFunc("GET /api/admin/workspaces/{id}/messages", chatHandler.ListMessages)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/messages", chatHandler.CreateMessage)

	admin.HandleFunc("GET /api/admin/workspaces/{id}/suggestions", suggestionHandler.List)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/suggestions", suggestionHandler.Create)
	admin.HandleFunc("POST /api/admin/suggestions/{id}/apply", suggestionHandler.Apply)
	admin.HandleFunc("POST /api/admin/suggestions/{id}/reject", suggestionHandler.Reject)

	admin.HandleFunc("GET /api/admin/workspaces/{id}/resources", resourceHandler.List)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/resources", resourceHandler.Create)
	admin.HandleFunc("POST /api/admin/workspaces/{id}/resources/upload", resourceHandler.Upload)
	admin.HandleFunc("GET /api/admin/resources/{id}/download", resourceHandler.Download)
	admin.HandleFunc("DELETE /api/admin/resources/{id}", resourceHandler.Delete)

	mux.Handle("/api/admin/", middleware.AdminAuth(sessionStore, logger)(admin))

	// Middleware chain: CORS → Recovery → Routes
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
