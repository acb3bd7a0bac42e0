package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"policyqa/internal/ai"
	"policyqa/internal/analytics"
	appsvc "policyqa/internal/app"
	"policyqa/internal/bootstrap"
	"policyqa/internal/cache"
	"policyqa/internal/classify"
	rabbitmqClient "policyqa/internal/platform/rabbitmq"
	"policyqa/internal/report"
	"policyqa/internal/repository"
	"policyqa/internal/session"
	"policyqa/internal/transport/http/handler"
	"policyqa/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.Static("/uploads", app.Config.Upload.Dir)

	aiClient := ai.NewClient()
	chatCfg := ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	}
	embCfg := ai.EmbeddingConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.EmbeddingModel,
	}

	userRepo := repository.NewUserRepository(app.MySQL)
	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	var classifier classify.Classifier
	if app.Config.Classifier.Mode == "heuristic" {
		classifier = classify.NewHeuristic(app.Config.Classifier.MinConfidence)
	} else {
		classifier = classify.NewLLM(aiClient, chatCfg)
	}

	documentService := appsvc.NewDocumentService(appsvc.DocumentServiceConfig{
		Store:        session.NewMemoryStore(),
		Classifier:   classifier,
		CompareGate:  classify.NewHeuristic(app.Config.Classifier.MinConfidence),
		Chat:         aiClient,
		Embedder:     aiClient,
		ChatCfg:      chatCfg,
		EmbCfg:       embCfg,
		Publisher:    rabbitmqClient.NewConversationPublisher(app.MQConn, app.Config.RabbitMQ.ConversationPersistQueue),
		Cache:        cache.NewHistoryCache(app.Redis, time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second),
		Reports:      report.NewGenerator(app.Config.Upload.Dir),
		UploadDir:    app.Config.Upload.Dir,
		ChunkSize:    app.Config.Retrieval.ChunkSize,
		ChunkOverlap: app.Config.Retrieval.ChunkOverlap,
	})

	kbService := appsvc.NewKBService(appsvc.KBServiceConfig{
		Repo:         repository.NewKBChunkRepository(app.MySQL),
		Chat:         aiClient,
		Embedder:     aiClient,
		ChatCfg:      chatCfg,
		EmbCfg:       embCfg,
		TopK:         app.Config.Retrieval.KBTopK,
		ChunkSize:    app.Config.Retrieval.KBChunkSize,
		ChunkOverlap: app.Config.Retrieval.KBChunkOverlap,
	})

	analyticsService := appsvc.NewAnalyticsService(
		analytics.NewAgent(aiClient, chatCfg),
		app.Config.Analytics.ClaimsPath,
		app.Config.Upload.Dir,
	)

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService, app.Config.Upload.Dir)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	kbHandler := handler.NewKBHandler(kbService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	docGroup.POST("", documentHandler.Upload)
	docGroup.GET("", documentHandler.List)
	docGroup.POST("/ask", documentHandler.Ask)
	docGroup.POST("/summarize", documentHandler.Summarize)
	docGroup.POST("/delete", documentHandler.Delete)
	docGroup.POST("/compare", documentHandler.Compare)
	docGroup.POST("/report", documentHandler.Report)
	docGroup.GET("/history", documentHandler.History)

	analyticsGroup := v1.Group("/analytics")
	analyticsGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	analyticsGroup.POST("/ask", analyticsHandler.Ask)

	kbGroup := v1.Group("/kb")
	kbGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	kbGroup.POST("/ask", kbHandler.Ask)

	return router
}
