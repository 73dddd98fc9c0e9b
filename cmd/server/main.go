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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/api/handler"
	"github.com/rsaputelli/PRS/internal/api/middleware"
	"github.com/rsaputelli/PRS/internal/api/router"
	"github.com/rsaputelli/PRS/internal/mail"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/database"
	"github.com/rsaputelli/PRS/pkg/jwt"
	applogger "github.com/rsaputelli/PRS/pkg/logger"
	"github.com/rsaputelli/PRS/pkg/metrics"
	"github.com/rsaputelli/PRS/pkg/redis"
	"github.com/rsaputelli/PRS/pkg/validator"
)

func main() {
	// 1. config (.env is optional)
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("PRS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("mail_dry_run", cfg.Mail.DryRun),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 4. optional infrastructure: interfaces stay nil when unavailable
	var deps service.Deps
	var limiter middleware.RateLimiter

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable; cache and rate limiting disabled", zap.Error(err))
	} else {
		deps.Cache = rdb
		limiter = rdb
	}

	pub, err := queue.NewPublisher(&cfg.RabbitMQ, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable; calendar sync and async sends disabled", zap.Error(err))
	} else {
		deps.Publisher = pub
	}

	deps.Mailer = mail.NewSender(&cfg.Mail, logger)

	// 5. validation tags + metrics
	if err := validator.Register(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}
	metrics.InitMetrics(cfg.Metrics.Prefix)

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(cfg, svc, logger)

	jwtMgr := jwt.NewManager(&cfg.Auth)
	engine := router.Setup(cfg, h, jwtMgr, svc.Profile, limiter, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	if pub != nil {
		pub.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	sqlDB.Close()

	logger.Info("stopped")
}
