package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fianchetto/clubtix/internal/config"
	"github.com/fianchetto/clubtix/internal/email"
	"github.com/fianchetto/clubtix/internal/postgres"
	redisx "github.com/fianchetto/clubtix/internal/redis"
	postgresrepo "github.com/fianchetto/clubtix/internal/repository/postgres"
	redisrepo "github.com/fianchetto/clubtix/internal/repository/redis"
	"github.com/fianchetto/clubtix/internal/service"
	"github.com/fianchetto/clubtix/internal/service/mailer"
	httpgin "github.com/fianchetto/clubtix/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	mailer     *mailer.Service
	cache      *redisrepo.Cache
	pubsub     *redisx.EventsPubSub
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	pgxPool, err := postgres.New(context.Background(), postgres.Config{
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Name:     cfg.Postgres.Name,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewEventsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(
		rdb, "bookings", cfg.Limits.BookingsPerWindow, cfg.Limits.Window,
	)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	var sender email.Sender = email.NopSender{}
	if cfg.Email.ResendAPIKey != "" {
		sender = email.NewResendSender(
			cfg.Email.ResendAPIKey,
			cfg.Email.FromEmail,
			cfg.Email.FromName,
			logger,
		)
	}

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, sender, logger, service.Config{
		Mailer: mailer.Config{
			Interval:     cfg.Mailer.Interval,
			BatchSize:    cfg.Mailer.BatchSize,
			ReclaimAfter: cfg.Mailer.ReclaimAfter,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		mailer: services.Mailer,
		cache:  cache,
		pubsub: pubsub,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Start outbox mailer worker
	g.Go(func() error {
		a.logger.Info("mailer worker started", "interval", a.cfg.Mailer.Interval)
		return a.mailer.Run(gCtx)
	})

	// Drop cached snapshots invalidated by other instances
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, eventID int64) {
			_ = a.cache.InvalidateEvent(ctx, eventID)
		})
		if err != nil && gCtx.Err() != nil {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
