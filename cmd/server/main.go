// Package main starts the content consultant API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-content-consultant/internal/config"
	"ai-content-consultant/internal/handler"
	"ai-content-consultant/internal/middleware"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/internal/pipeline"
	"ai-content-consultant/internal/repository"
	"ai-content-consultant/internal/service"
	"ai-content-consultant/pkg/database"
	"ai-content-consultant/pkg/embedding"
	"ai-content-consultant/pkg/es"
	"ai-content-consultant/pkg/kafka"
	"ai-content-consultant/pkg/llm"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/storage"
	"ai-content-consultant/pkg/token"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const serviceName = "ai-content-consultant"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	config.Init("./configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Infow("starting", "service", serviceName, "version", cfg.Server.Version, "environment", cfg.Server.Environment)

	database.InitMySQL(cfg.Database.MySQL.DSN, &model.User{}, &model.SavedIdea{})
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)

	retrievalEnabled := cfg.Retrieval.Enabled
	var esClient *elasticsearch.Client
	if retrievalEnabled {
		if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
			log.Errorf("elasticsearch unavailable, retrieval disabled: %v", err)
			retrievalEnabled = false
		} else {
			esClient = es.ESClient
		}
	}
	kafka.InitProducer(cfg.Kafka)
	defer kafka.CloseProducer()

	exampleCache := repository.NewExampleCacheRepository(database.RDB, time.Duration(cfg.Retrieval.CacheTTLSeconds)*time.Second)
	userRepo := repository.NewUserRepository(database.DB)
	ideaRepo := repository.NewIdeaRepository(database.DB)
	blacklist := repository.NewTokenBlacklistRepository(database.RDB)

	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	objectStore := storage.NewObjectStore(storage.MinioClient, cfg.MinIO.BucketName)

	searchService := service.NewSearchService(embeddingClient, esClient, cfg.Elasticsearch.IndexName, exampleCache)
	chatService := service.NewChatService(llmClient, searchService, chatOptions(cfg, retrievalEnabled))
	userService := service.NewUserService(userRepo, blacklist, jwtManager)
	ideaService := service.NewIdeaService(ideaRepo)
	ingestService := service.NewIngestService(objectStore, kafka.ProduceIngestTask)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if esClient != nil {
		processor := pipeline.NewProcessor(embeddingClient, objectStore,
			es.ExampleIndexer{IndexName: cfg.Elasticsearch.IndexName}, exampleCache, cfg.Embedding.Model)
		go kafka.StartConsumer(consumerCtx, cfg.Kafka, processor)
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.Metrics())

	health := handler.NewHealthHandler(serviceName, cfg.Server.Version, cfg.Server.Environment, readinessChecks(esClient))
	r.GET("/", health.Root)
	r.GET("/readiness", health.Readiness)
	r.GET("/liveness", health.Liveness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := handler.NewChatHandler(chatService)
	r.GET("/chat/ws", chatHandler.Handle)

	requireUser := middleware.AuthMiddleware(jwtManager, userService, blacklist)
	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.GET("/search/examples", handler.NewSearchHandler(searchService).SearchExamples)

		apiV1.POST("/auth/refreshToken", handler.NewAuthHandler(userService).RefreshToken)

		userHandler := handler.NewUserHandler(userService)
		users := apiV1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			authed := users.Group("/")
			authed.Use(requireUser)
			{
				authed.GET("/me", userHandler.GetProfile)
				authed.PUT("/preferences", userHandler.UpdatePreferences)
				authed.POST("/logout", userHandler.Logout)
			}
		}

		ideaHandler := handler.NewIdeaHandler(ideaService)
		ideas := apiV1.Group("/ideas")
		ideas.Use(requireUser)
		{
			ideas.POST("", ideaHandler.Save)
			ideas.GET("", ideaHandler.List)
			ideas.DELETE("/:id", ideaHandler.Delete)
		}

		adminHandler := handler.NewAdminHandler(ingestService)
		admin := apiV1.Group("/admin")
		admin.Use(requireUser, middleware.AdminAuthMiddleware())
		{
			admin.POST("/examples", adminHandler.EnqueueExamples)
			admin.POST("/manifests", adminHandler.UploadManifest)
		}
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	stopConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}
	log.Info("server stopped")
}

func chatOptions(cfg config.Config, retrievalEnabled bool) service.ChatOptions {
	gen := cfg.LLM.Generation
	params := &llm.GenerationParams{}
	if gen.Temperature > 0 {
		params.Temperature = &gen.Temperature
	}
	if gen.TopP > 0 {
		params.TopP = &gen.TopP
	}
	if gen.MaxTokens > 0 {
		params.MaxTokens = &gen.MaxTokens
	}
	return service.ChatOptions{
		SystemInstruction: cfg.LLM.Prompt.System,
		RefStart:          cfg.LLM.Prompt.RefStart,
		RefEnd:            cfg.LLM.Prompt.RefEnd,
		NoContextText:     cfg.LLM.Prompt.NoResultText,
		RetrievalEnabled:  retrievalEnabled,
		TopK:              cfg.Retrieval.TopK,
		Generation:        params,
	}
}

func readinessChecks(esClient *elasticsearch.Client) map[string]handler.Check {
	checks := map[string]handler.Check{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := database.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return database.RDB.Ping(ctx).Err()
		},
	}
	if esClient != nil {
		checks["elasticsearch"] = es.Ping
	}
	return checks
}
