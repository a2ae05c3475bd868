package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	api "urlshort/internal/api/http"
	"urlshort/internal/cache/redis"
	"urlshort/internal/config"
	"urlshort/internal/database/postgres"
	"urlshort/internal/logstore/mongo"
	"urlshort/internal/service"
)

// Run wires the persistent store, cache, log store and HTTP server together
// and blocks until the context is cancelled or the server fails.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logLevel := slog.LevelInfo
	if cfg.Env == config.EnvDev {
		logLevel = slog.LevelDebug
	}

	logger := httplog.NewLogger("urlshort", httplog.Options{
		JSON:     cfg.Env != config.EnvDev,
		LogLevel: logLevel,
		Concise:  cfg.Env == config.EnvDev,
	})

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := postgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	urlCache, err := redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to cache: %w", op, err)
	}
	defer urlCache.Close()

	mongoClient, err := mongo.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to log store: %w", op, err)
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	accessLogs := mongo.NewAccessLogRepository(mongoClient)
	urlRepo := postgres.NewURLRepository(db)
	urlSvc := service.NewURLService(urlRepo, urlCache, accessLogs, logger.Logger, cfg.ShortCodeLength, cfg.CacheTTL)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        api.NewRouter(logger, urlSvc, accessLogs, cfg.APIToken),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
