// Package main runs the voicebank recordings HTTP server with graceful shutdown.
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

	"github.com/voicebank/backend/config"
	"github.com/voicebank/backend/internal/labels"
	"github.com/voicebank/backend/internal/middleware"
	"github.com/voicebank/backend/internal/recordings"
	"github.com/voicebank/backend/internal/worker"
	"github.com/voicebank/backend/pkg/cache"
	"github.com/voicebank/backend/pkg/database"
	"github.com/voicebank/backend/pkg/response"
	"github.com/voicebank/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, database.PoolConfig{
		DSN:            cfg.Database.DSN(),
		MaxConns:       cfg.Database.MaxConns,
		ConnectTimeout: time.Duration(cfg.Database.ConnectTimeoutSec) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		EndpointURL:     cfg.S3.EndpointURL,
		Region:          cfg.S3.Region,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		CacheControl:    cfg.S3.CacheControl,
	}, logger)
	if err != nil {
		logger.Fatal("object storage", zap.Error(err))
	}

	var counts *cache.Cache
	if cfg.Redis.Addr != "" {
		counts, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("stat cache disabled", zap.Error(err))
		} else {
			defer counts.Close()
		}
	}

	recordingRepo := recordings.NewRepository(pool)
	recordingHandler := recordings.NewHandler(recordingRepo, s3Client, counts, cfg.Upload.MaxStringLength, logger)

	labelRepo := labels.NewRepository(pool)
	labelHandler := labels.NewHandler(labelRepo, logger)

	reconciler := worker.NewReconciler(recordingRepo, s3Client,
		time.Duration(cfg.Reconcile.IntervalSec)*time.Second,
		time.Duration(cfg.Reconcile.GraceSec)*time.Second,
		logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.MaxMultipartMemory = 8 * 1024 * 1024

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	router.POST("/recordings/", middleware.BodyLimit(cfg.Upload.MaxContentLength), recordingHandler.Create)
	router.GET("/recordings/:id/", recordingHandler.GetByID)
	router.GET("/recordings/:id/children/", recordingHandler.GetChildren)

	router.GET("/labels/categories/", labelHandler.Categories)
	router.GET("/labels/ages/", labelHandler.Ages)
	router.GET("/labels/genders/", labelHandler.Genders)

	// Not nested under /recordings/ so the static segment cannot collide
	// with the :id wildcard.
	router.GET("/random/:count/", recordingHandler.Random)

	router.GET("/stats/", recordingHandler.Stats)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go reconciler.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
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
