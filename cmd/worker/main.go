// Command worker drains the side-effect queue: calendar sync, queued
// confirmations and staffing digests. With -digest it sends one digest and
// exits, which is how a scheduler triggers the daily mail.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/calendar"
	"github.com/rsaputelli/PRS/internal/mail"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
	"github.com/rsaputelli/PRS/internal/service"
	"github.com/rsaputelli/PRS/pkg/database"
	applogger "github.com/rsaputelli/PRS/pkg/logger"
	"github.com/rsaputelli/PRS/pkg/metrics"
)

func main() {
	digestOnce := flag.Bool("digest", false, "send the staffing digest once and exit")
	metricsAddr := flag.String("metrics-addr", ":9091", "listen address for /metrics; empty disables it")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("PRS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log, "worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	metrics.InitMetrics(cfg.Metrics.Prefix)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var deps service.Deps
	deps.Mailer = mail.NewSender(&cfg.Mail, logger)
	if len(cfg.Calendar.IDs) > 0 {
		httpClient := mail.OAuthClient(ctx, cfg.Mail.Gmail.ClientID, cfg.Mail.Gmail.ClientSecret,
			cfg.Mail.Gmail.RefreshToken, calendar.CalendarScope)
		cal, err := calendar.NewClient(&cfg.Calendar, httpClient, logger)
		if err != nil {
			logger.Fatal("init calendar client", zap.Error(err))
		}
		deps.Calendar = cal
	} else {
		logger.Warn("no calendar ids configured; calendar sync disabled")
	}

	svc := service.NewService(cfg, repository.NewRepository(db), deps, logger)

	if *digestOnce {
		res, err := svc.Staffing.SendDigest(ctx, "scheduler", false)
		if err != nil {
			logger.Fatal("staffing digest", zap.Error(err))
		}
		logger.Info("staffing digest done", zap.String("status", res.Status))
		return
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queue.NewConsumer(&cfg.RabbitMQ, svc.Jobs.Handle, logger).Run(gctx)
	})

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("worker started", zap.String("queue", cfg.RabbitMQ.Queue))
	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
