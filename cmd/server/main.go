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

	"go.uber.org/zap"

	"github.com/Hems566/eter-projectv1.0/config"
	"github.com/Hems566/eter-projectv1.0/internal/api/handler"
	"github.com/Hems566/eter-projectv1.0/internal/api/router"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	"github.com/Hems566/eter-projectv1.0/internal/service"
	"github.com/Hems566/eter-projectv1.0/pkg/database"
	"github.com/Hems566/eter-projectv1.0/pkg/jwt"
	applogger "github.com/Hems566/eter-projectv1.0/pkg/logger"
	"github.com/Hems566/eter-projectv1.0/pkg/redis"
	"github.com/Hems566/eter-projectv1.0/pkg/storage"
)

func main() {
	// 1. configuration
	cfg, err := config.Load(os.Getenv("ETER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Workflow.Timezone),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	// 4. redis is optional: without it logout and login throttling are disabled
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	// 5. object storage for archived exports
	var store service.ReportStore
	if cfg.Storage.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStore, err := storage.NewMinIOStore(ctx, &cfg.Storage, logger)
		cancel()
		if err != nil {
			logger.Warn("storage unavailable, archival disabled", zap.Error(err))
		} else {
			store = minioStore
		}
	}

	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db, cfg.Database.LockTimeout)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, store, service.OptionsFromConfig(&cfg.Workflow), logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
