package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"go-notification-relay/internal/infrastructure/config"
	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
	"go-notification-relay/internal/infrastructure/server"
	"go-notification-relay/internal/notification"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg := config.Load()

	lCfg := logger.NewDefaultConfig()
	lCfg.Level = cfg.LogLevel
	lCfg.Format = cfg.LogFormat
	log := logger.NewLogrusLogger(lCfg)

	store, err := notification.OpenSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open notification store: %v", err)
	}

	// The hub must be running before any route that depends on it exists.
	hubInstance := hub.New(log)
	if err := hubInstance.Start(ctx); err != nil {
		log.Fatalf("failed to start hub: %v", err)
	}

	router := InitRouter(hubInstance, store, log)
	httpSrv := server.NewHTTPServer(":"+cfg.Port, router)

	app := newApplication(log, httpSrv, hubInstance, store)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

type Application struct {
	logger  logger.Logger
	httpSrv server.Server
	hub     *hub.Hub
	store   *notification.SQLiteStore
}

func newApplication(
	log logger.Logger,
	httpSrv *server.HTTPServer,
	hubInstance *hub.Hub,
	store *notification.SQLiteStore,
) *Application {
	return &Application{
		logger:  log.WithField("app", "relay"),
		httpSrv: httpSrv,
		hub:     hubInstance,
		store:   store,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()

		// Stop the hub first so live connections are closed before the
		// HTTP server stops accepting.
		if err := app.hub.Stop(shutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}
		if err := app.store.Close(); err != nil {
			app.logger.Errorf("failed to close store: %v", err)
		}

		return app.httpSrv.Stop(shutdownCtx)
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
