// Package app assembles the support portal from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/supportdesk/support-portal/internal/api/http"
	"github.com/supportdesk/support-portal/internal/api/http/handlers"
	"github.com/supportdesk/support-portal/internal/auth"
	"github.com/supportdesk/support-portal/internal/config"
	"github.com/supportdesk/support-portal/internal/events"
	"github.com/supportdesk/support-portal/internal/notify"
	"github.com/supportdesk/support-portal/internal/observability"
	"github.com/supportdesk/support-portal/internal/persistence"
	"github.com/supportdesk/support-portal/internal/service"
	"github.com/supportdesk/support-portal/internal/session"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/internal/storage/memory"
	"github.com/supportdesk/support-portal/internal/storage/postgres"
	"github.com/supportdesk/support-portal/internal/upload"
	"github.com/supportdesk/support-portal/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived component of a running server.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	fiber    *fiber.App
	postgres *persistence.Postgres
	redis    *persistence.Redis
	store    storage.Storage
	worker   *worker.NotificationWorker
}

// New connects dependencies, builds services and registers routes.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	ok := false
	defer func() {
		if !ok {
			a.release()
		}
	}()

	if cfg.Storage.Backend == config.BackendPostgres {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.postgres = pg
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
	}
	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	a.redis = redis
	if err != nil {
		if cfg.Session.Backend == config.BackendRedis {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Warn("redis unavailable; readiness will report it", zap.Error(err))
	}

	sessions, err := NewSessionStore(cfg, a.redis, logger)
	if err != nil {
		return nil, err
	}
	store, err := OpenStorage(ctx, cfg, a.postgres, sessions)
	if err != nil {
		_ = sessions.Close()
		return nil, err
	}
	a.store = store
	logger.Info("storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("sessions", cfg.Session.Backend))

	uploads, err := upload.NewStore(cfg.Upload)
	if err != nil {
		return nil, err
	}

	a.worker = worker.NewNotificationWorker(notify.NewSender(cfg.Mail, logger), logger, cfg.Notification.QueueSize)
	a.worker.Start()

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, a.worker, logger).RegisterHandlers()

	authService := service.NewAuthService(cfg.Auth, store, dispatcher, logger)
	ticketService := service.NewTicketService(store, dispatcher, logger)
	articleService := service.NewArticleService(store, dispatcher, logger)
	profileService := service.NewProfileService(store, uploads, dispatcher, logger)

	loginSessions := auth.NewSessions(store.SessionStore(), cfg.Session)
	metrics := observability.NewMetrics()

	a.fiber = httptransport.NewApp(httptransport.AppConfig{
		Name:           cfg.App.Name,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	})
	httptransport.RegisterRoutes(a.fiber, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDeps{
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Backend:     cfg.Storage.Backend,
			Postgres:    a.postgres,
			Redis:       a.redis,
			Metrics:     metrics,
		}),
		Auth:           handlers.NewAuthHandler(authService, loginSessions),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Articles:       handlers.NewArticlesHandler(articleService),
		Profile:        handlers.NewProfileHandler(profileService),
		AuthMiddleware: auth.NewAuthMiddleware(loginSessions, store),
		UploadDir:      uploads.Dir(),
	})

	ok = true
	return a, nil
}

// NewSessionStore selects the session backend.
func NewSessionStore(cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) (session.Store, error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		if !redis.Enabled() {
			return nil, errors.New("redis session backend requires REDIS_ADDR")
		}
		return session.NewRedisStore(redis.Client), nil
	default:
		return session.NewMemoryStore(cfg.Session.CheckPeriod(), logger), nil
	}
}

// OpenStorage selects the storage engine.
func OpenStorage(ctx context.Context, cfg *config.Config, pg *persistence.Postgres, sessions session.Store) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		store, err := postgres.New(ctx, pg.PoolHandle(), sessions)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return store, nil
	default:
		store, err := memory.New(memory.WithSessionStore(sessions))
		if err != nil {
			return nil, fmt.Errorf("open memory storage: %w", err)
		}
		return store, nil
	}
}

// Fiber exposes the HTTP application.
func (a *App) Fiber() *fiber.App {
	return a.fiber
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.fiber.Listen(a.cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		a.Close()
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.fiber.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}
	a.Close()
	return nil
}

// Close drains pending mail and releases storage and connections.
func (a *App) Close() {
	if a.worker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.worker.Stop(ctx); err != nil {
			a.logger.Warn("notification worker did not drain", zap.Error(err))
		}
		cancel()
		a.worker = nil
	}
	a.release()
}

func (a *App) release() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close storage", zap.Error(err))
		}
		a.store = nil
	}
	a.redis.Close()
	a.redis = nil
	a.postgres.Close()
	a.postgres = nil
}
