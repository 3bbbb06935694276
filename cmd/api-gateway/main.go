package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/herbtrace/herbtrace-api/api/swagger"
	"github.com/herbtrace/herbtrace-api/internal/handler"
	"github.com/herbtrace/herbtrace-api/internal/middleware"
	"github.com/herbtrace/herbtrace-api/internal/repository"
	"github.com/herbtrace/herbtrace-api/internal/service"
	"github.com/herbtrace/herbtrace-api/pkg/cache"
	"github.com/herbtrace/herbtrace-api/pkg/config"
	"github.com/herbtrace/herbtrace-api/pkg/database"
	"github.com/herbtrace/herbtrace-api/pkg/logger"
	corsmiddleware "github.com/herbtrace/herbtrace-api/pkg/middleware/cors"
	reqidmiddleware "github.com/herbtrace/herbtrace-api/pkg/middleware/requestid"
	"github.com/herbtrace/herbtrace-api/pkg/storage"
)

// @title HerbTrace API
// @version 1.0.0
// @description Marketplace and provenance verification API for traceable herb batches
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	savedRepo := repository.NewSavedRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Browse.CacheTTL, logr, cfg.Browse.CacheEnabled)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "herbtrace-api",
	})
	batchSvc := service.NewBatchService(batchRepo, reviewRepo, userRepo, cacheSvc, validate, logr)
	verificationSvc := service.NewVerificationService(batchRepo, verificationRepo, metricsSvc, logr, service.VerificationConfig{
		StaticDatasetEnabled: cfg.Verification.StaticDatasetEnabled,
		RecordHistory:        cfg.Verification.RecordHistory,
	})
	savedSvc := service.NewSavedService(savedRepo, batchRepo, logr)
	reviewSvc := service.NewReviewService(reviewRepo, batchRepo, cacheSvc, validate, logr)
	orderSvc := service.NewOrderService(orderRepo, batchRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, savedRepo, verificationRepo, logr)
	exportSvc := service.NewExportService(batchRepo, exportStore, signer, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Deps{
		Auth:         authSvc,
		Batches:      batchSvc,
		Verification: verificationSvc,
		Saved:        savedSvc,
		Reviews:      reviewSvc,
		Orders:       orderSvc,
		Users:        userSvc,
		Exports:      exportSvc,
		Metrics:      metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
