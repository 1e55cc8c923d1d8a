package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/codementor-backend/internal/config"
	"github.com/yungbote/codementor-backend/internal/data/db"
	"github.com/yungbote/codementor-backend/internal/dispatch"
	httpserver "github.com/yungbote/codementor-backend/internal/http"
	"github.com/yungbote/codementor-backend/internal/observability"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
)

type App struct {
	Log        *logger.Logger
	Cfg        *config.Config
	DB         *db.Service
	Metrics    *observability.Metrics
	Dispatcher *dispatch.Dispatcher
	Server     *httpserver.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("config loaded", "env", cfg.Env, "addr", cfg.HTTP.Addr, "database", cfg.Database.Driver)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Telemetry.Version,
	})
	metrics := observability.Init(log)

	dbs, err := db.Open(cfg.Database, log)
	switch {
	case errors.Is(err, db.ErrDisabled):
		log.Info("ai call log disabled (no database configured)")
	case err != nil:
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}

	adapters := wireProviders(cfg.Providers, log)
	dispatcher, err := wireDispatcher(adapters, wireCallLog(dbs, log), log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	server := wireServer(cfg, dispatcher, metrics, log)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbs,
		Metrics:      metrics,
		Dispatcher:   dispatcher,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("http server listening", "addr", a.Server.Addr())
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Cfg.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		a.Log.Info("http server shutting down")
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTP.ShutdownTimeout.Duration)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
