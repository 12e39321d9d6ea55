// Package app contains the application setup for the dashboard service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/prodboard/internal/catalog"
	"github.com/abgdnv/prodboard/internal/config"
	"github.com/abgdnv/prodboard/internal/notify"
	"github.com/abgdnv/prodboard/internal/store"
	"github.com/abgdnv/prodboard/internal/transport/rest"
	"github.com/abgdnv/prodboard/pkg/bootstrap"
	"github.com/abgdnv/prodboard/pkg/server"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type Dependencies struct {
	Repo     *catalog.Repository
	Notifier notify.Notifier
	Logger   *slog.Logger

	cleanups []func()
}

// SetupDependencies builds the snapshot store and notifier from the
// configuration, constructs the repository and hydrates it. Close releases
// whatever connections were opened along the way.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: logger}

	snapshots, err := newSnapshotStore(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	if cfg.NATS.Enabled {
		nc, js, err := bootstrap.NewJetStream(cfg.NATS.Url, cfg.NATS.Timeout)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.cleanups = append(deps.cleanups, nc.Close)
		deps.Notifier = notify.NewNatsNotifier(js, cfg.NATS.Subject, logger)
	} else {
		deps.Notifier = notify.NewLogNotifier(logger)
	}

	deps.Repo = catalog.NewRepository(snapshots, logger)
	if err := deps.Repo.Load(ctx); err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to hydrate catalog: %w", err)
	}
	return deps, nil
}

// Close releases connections opened by SetupDependencies.
func (d *Dependencies) Close() {
	for i := len(d.cleanups) - 1; i >= 0; i-- {
		d.cleanups[i]()
	}
}

func newSnapshotStore(ctx context.Context, cfg *config.Config, deps *Dependencies) (catalog.SnapshotStore, error) {
	switch cfg.Store.Backend {
	case store.BackendMemory:
		return store.NewMemory(), nil
	case store.BackendFile:
		return store.NewFile(cfg.Store.File.Path), nil
	case store.BackendPostgres:
		if cfg.Store.Database.Migrations != "" {
			if err := store.RunMigrations(cfg.Store.Database.URL, cfg.Store.Database.Migrations); err != nil {
				return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
			}
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Store.Database.URL, cfg.Store.Database.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		deps.cleanups = append(deps.cleanups, dbPool.Close)
		return store.NewPgStore(dbPool), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}

// SetupHttpHandler initializes the router and routes for the dashboard.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	var limiter *rate.Limiter
	if cfg.HTTPServer.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTPServer.RateLimit.RPS), cfg.HTTPServer.RateLimit.Burst)
	}
	mux := server.NewChiRouter(deps.Logger, limiter)
	wireRoutes(mux, deps, cfg)
	return mux
}

// wireRoutes sets up the HTTP routes for the dashboard.
func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	handler := rest.NewHandler(deps.Repo, deps.Notifier, cfg.Catalog.PageSize, cfg.Catalog.SearchDebounce, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server for the dashboard.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, cfg)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
