package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockCast/internal/domain/repository"
	"StockCast/pkg/cache"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	"StockCast/pkg/logger"
	"StockCast/pkg/queue"
)

// App encapsulates the entire application lifecycle: worker queue,
// HTTP server, and the infrastructure clients that need closing.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	queue   queue.Queue
	handler xhttp.Handler
	events  repository.EventPublisher
	rcache  cache.Service // nil unless a redis backend is configured
	archive repository.CandleArchive

	httpServer *xhttp.Server
}

// New creates an App with all dependencies injected.
func New(
	cfg *config.Config,
	log *logger.Logger,
	q queue.Queue,
	handler xhttp.Handler,
	events repository.EventPublisher,
	rcache cache.Service,
	archive repository.CandleArchive,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		queue:   q,
		handler: handler,
		events:  events,
		rcache:  rcache,
		archive: archive,
	}
}

// Run starts the workers and the HTTP server, then blocks until a
// shutdown signal arrives.
func (a *App) Run() error {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	}
	if a.cfg.Metrics.Enabled && a.cfg.Metrics.Path != "" {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	if err := a.queue.Start(); err != nil {
		return err
	}
	a.log.Info("workers started",
		logger.String("queue", a.cfg.Queue.Type),
		logger.Int("workers", a.cfg.Queue.Workers))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		return err
	}
	a.log.Info("http server started", logger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown drains the queue before stopping the HTTP server, so jobs
// in flight get their chance to settle.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.queue.Stop(ctx); err != nil {
		a.log.Warn("queue stop error", logger.Error(err))
	}
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event publisher close error", logger.Error(err))
		}
	}
	if closer, ok := a.archive.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			a.log.Warn("archive close error", logger.Error(err))
		}
	}
	if a.rcache != nil {
		if err := a.rcache.Close(); err != nil {
			a.log.Warn("redis close error", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
