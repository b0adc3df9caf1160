package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wiredoc-server/internal/config"
	"github.com/vovakirdan/wiredoc-server/internal/core"
	"github.com/vovakirdan/wiredoc-server/internal/store"
	"github.com/vovakirdan/wiredoc-server/internal/store/file"
	"github.com/vovakirdan/wiredoc-server/internal/store/redis"
	"github.com/vovakirdan/wiredoc-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/wiredoc-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.SnapshotStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("backend", cfg.Storage.Backend).Msg("snapshot store initialized")

	hub := core.NewHub(st, logger,
		core.WithPresenceDelay(cfg.PresenceDelay),
		core.WithStorageTimeout(cfg.Storage.Timeout),
	)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// OpenStore opens the snapshot backend named in cfg. The memory backend returns a nil store.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (store.SnapshotStore, error) {
	switch cfg.Backend {
	case store.BackendFile, "":
		return file.New(cfg.DataDir), nil
	case store.BackendSQLite:
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case store.BackendRedis:
		st, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return st, nil
	case store.BackendMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Addr returns the configured listen address.
func (a *App) Addr() string {
	return a.server.Addr
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
// On return the hub has flushed queued snapshots and the store is closed.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		a.hub.Run(hubCtx)
	}()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	var runErr error
	select {
	case runErr = <-serverErr:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			runErr = err
		} else {
			runErr = <-serverErr
		}
	}

	stopHub()
	<-hubDone
	a.cleanup()
	return runErr
}

// cleanup closes the snapshot store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
