// Package main runs the Enqueta survey platform HTTP server with WebSocket
// live feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/enqueta/backend/config"
	"github.com/enqueta/backend/internal/apps"
	"github.com/enqueta/backend/internal/audit"
	"github.com/enqueta/backend/internal/auth"
	"github.com/enqueta/backend/internal/captcha"
	"github.com/enqueta/backend/internal/export"
	"github.com/enqueta/backend/internal/middleware"
	"github.com/enqueta/backend/internal/questions"
	"github.com/enqueta/backend/internal/realtime"
	"github.com/enqueta/backend/internal/submissions"
	"github.com/enqueta/backend/internal/surveys"
	"github.com/enqueta/backend/internal/users"
	"github.com/enqueta/backend/internal/webhook"
	"github.com/enqueta/backend/pkg/database"
	"github.com/enqueta/backend/pkg/redis"
	"github.com/enqueta/backend/pkg/response"
	"github.com/enqueta/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AssetsBucket:         cfg.AWS.AssetsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, pubsub, pubsub)

	// Audit trail
	auditRepo := audit.NewRepository(pool)
	recorder := audit.NewRecorder(auditRepo, logger)
	auditHandler := audit.NewHandler(auditRepo)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, recorder)

	// Apps
	appRepo := apps.NewRepository(pool)
	appHandler := apps.NewHandler(appRepo, recorder)

	// Surveys
	surveyRepo := surveys.NewRepository(pool)
	surveyService := surveys.NewService(surveyRepo, logger)
	surveyHandler := surveys.NewHandler(surveyRepo, surveyService, s3Client, recorder, logger)

	// Questions
	questionRepo := questions.NewRepository(pool)
	questionHandler := questions.NewHandler(questionRepo, recorder)

	// Submissions (public intake)
	replayGuard := captcha.NewRedisReplayGuard(rdb.Client, 10*time.Minute, logger)
	verifier := captcha.NewHTTPVerifier(cfg.Captcha.VerifyURL, cfg.Captcha.Secret,
		time.Duration(cfg.Captcha.TimeoutSeconds)*time.Second, replayGuard, logger)
	dispatcher := webhook.NewDispatcher(time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
		cfg.App.Name+"-Webhook/1.0", logger)
	responseRepo := submissions.NewRepository(pool)
	submitService := submissions.NewService(surveyRepo, responseRepo, verifier, dispatcher, hub, logger)
	submitHandler := submissions.NewHandler(submitService, responseRepo, recorder)

	// Export
	exportHandler := export.NewHandler(surveyRepo, responseRepo)

	// Users
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, recorder)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public, rate limited against credential stuffing)
	router.POST("/auth/login",
		middleware.RateLimit(rdb.Client, logger, "login", 10, time.Minute),
		authHandler.Login)

	// Public form endpoints (no JWT)
	public := router.Group("/public")
	{
		public.GET("/:appSlug/:surveySlug", surveyHandler.PublicForm)
		public.POST("/submissions",
			middleware.RateLimit(rdb.Client, logger, "submit", 20, time.Minute),
			submitHandler.Submit)
	}

	// Protected API (JWT required)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	admin := middleware.RequireRole("ADMIN")
	{
		api.GET("/auth/me", authHandler.Me)

		// Apps
		api.GET("/apps", appHandler.List)
		api.POST("/apps", admin, appHandler.Create)
		api.GET("/apps/:id", appHandler.GetByID)
		api.PUT("/apps/:id", admin, appHandler.Update)
		api.DELETE("/apps/:id", admin, appHandler.Delete)
		api.GET("/apps/:id/surveys", surveyHandler.ListByApp)

		// Surveys
		api.POST("/surveys", admin, surveyHandler.Create)
		api.GET("/surveys/:id", surveyHandler.GetByID)
		api.PUT("/surveys/:id", admin, surveyHandler.Update)
		api.DELETE("/surveys/:id", admin, surveyHandler.Delete)
		api.POST("/surveys/:id/duplicate", admin, surveyHandler.Duplicate)
		api.POST("/surveys/:id/assets", admin, surveyHandler.UploadAsset)

		// Questions
		api.POST("/surveys/:id/questions", admin, questionHandler.Create)
		api.PUT("/surveys/:id/questions/order", admin, questionHandler.Reorder)
		api.PUT("/questions/:id", admin, questionHandler.Update)
		api.DELETE("/questions/:id", admin, questionHandler.Delete)

		// Responses
		api.GET("/surveys/:id/responses", admin, submitHandler.ListBySurvey)
		api.GET("/surveys/:id/export", admin, exportHandler.Download)
		api.DELETE("/responses/:id", admin, submitHandler.Delete)

		// Users
		api.GET("/users", admin, userHandler.List)
		api.POST("/users", admin, userHandler.Create)
		api.PUT("/users/:id", admin, userHandler.Update)
		api.DELETE("/users/:id", admin, userHandler.Delete)

		// Audit trail
		api.GET("/audit-logs", admin, auditHandler.List)
	}

	// WebSocket live feed (token in query; no Authorization header on upgrades)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
