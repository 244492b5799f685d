package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"xfin/internal/domain/repository"
	"xfin/internal/scheduler"
	"xfin/pkg/cache"
	pkgch "xfin/pkg/clickhouse"
	"xfin/pkg/config"
	xhttp "xfin/pkg/http"
	"xfin/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	scheduler  *scheduler.Scheduler
	httpServer *xhttp.Server
	cache      cache.Service
	chClient   *pkgch.Client
	publisher  repository.EventPublisher
}

// New creates a new App instance with all dependencies. chClient and
// publisher may be nil when the corresponding backend is disabled.
func New(
	cfg *config.Config,
	log *logger.Logger,
	sched *scheduler.Scheduler,
	handler xhttp.Handler,
	cacheSvc cache.Service,
	chClient *pkgch.Client,
	publisher repository.EventPublisher,
) *App {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}

	httpServer := xhttp.NewServer(log, handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	return &App{
		cfg:        cfg,
		log:        log,
		scheduler:  sched,
		httpServer: httpServer,
		cache:      cacheSvc,
		chClient:   chClient,
		publisher:  publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.scheduler.Start(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		return err
	}

	a.log.Info("application started",
		logger.String("environment", a.cfg.Environment),
		logger.String("timezone", a.cfg.Timezone),
		logger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services in dependency order.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(ctx); err != nil {
		a.log.Warn("scheduler stop error", logger.Error(err))
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", logger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", logger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
