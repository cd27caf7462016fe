package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	imagerepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/image"
	ownerrepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/owner"
	propertyrepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/property"
	tracerepo "github.com/heartmarshall/realestate-backend/internal/adapter/postgres/trace"
	"github.com/heartmarshall/realestate-backend/internal/adapter/rabbitmq"
	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/internal/service/owner"
	"github.com/heartmarshall/realestate-backend/internal/service/property"
	"github.com/heartmarshall/realestate-backend/internal/transport/middleware"
	"github.com/heartmarshall/realestate-backend/internal/transport/rest"
)

const rateLimiterCleanup = time.Minute

// eventPublisher is implemented by rabbitmq.Publisher and rabbitmq.Noop.
type eventPublisher interface {
	PublishTraces(ctx context.Context, traces []domain.PropertyTrace) error
	Ping(ctx context.Context) error
	Close() error
}

// Run connects the database and the broker, builds the services and serves
// HTTP until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("broker_enabled", cfg.Broker.Enabled),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	events, err := newEventPublisher(cfg.Broker, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("close event publisher", slog.String("error", err.Error()))
		}
	}()

	// Repositories
	properties := propertyrepo.New(pool)
	images := imagerepo.New(pool)
	traces := tracerepo.New(pool)
	owners := ownerrepo.New(pool)
	txm := postgres.NewTxManager(pool)

	// Services
	propertySvc := property.NewService(logger, properties, images, traces, owners, txm, events, cfg.Listing)
	ownerSvc := owner.NewService(logger, owners, properties, txm, cfg.Listing)

	// Transport
	extra := map[string]rest.Pinger{}
	if cfg.Broker.Enabled {
		extra["broker"] = events
	}

	limiter := middleware.NewRateLimiter(rateLimiterCleanup)
	defer limiter.Stop()

	handler := rest.NewRouter(rest.RouterDeps{
		Properties:     rest.NewPropertyHandler(propertySvc, logger),
		Owners:         rest.NewOwnerHandler(ownerSvc, logger),
		Health:         rest.NewHealthHandler(pool, Version, extra),
		CORS:           cfg.CORS,
		RateLimiter:    limiter,
		WriteRateLimit: cfg.Server.WriteRateLimit,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return serve(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}

func newEventPublisher(cfg config.BrokerConfig, logger *slog.Logger) (eventPublisher, error) {
	if !cfg.Enabled {
		logger.Info("event publication disabled")
		return rabbitmq.Noop{}, nil
	}

	p, err := rabbitmq.Dial(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	logger.Info("event publication enabled", slog.String("exchange", cfg.Exchange))
	return p, nil
}

// serve runs srv until ctx is done or the listener fails.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
