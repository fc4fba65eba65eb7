package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"padoca/internal/config"
	"padoca/internal/db"
	"padoca/internal/db/mock"
	"padoca/internal/events"
	applog "padoca/internal/log"
	"padoca/internal/server"
)

// serverLifecycle is the part of *server.Server the entrypoint drives,
// injectable for tests.
type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	configureLogging    = applog.Configure
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	configurePublisher  = func(brokers []string, topic string) {
		events.Configure(events.NewKafkaPublisher(brokers, topic))
	}
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		return sigCh, func() { signal.Stop(sigCh) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}

	if err := configureLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
		applog.Error(ctx, "failed to configure logging", "error", err)
		return 1
	}

	var database *gorm.DB
	if cfg.Database.UseMock {
		applog.Info(ctx, "using in-memory mock database")
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	if len(cfg.Events.Brokers) > 0 {
		configurePublisher(cfg.Events.Brokers, cfg.Events.Topic)
		applog.Info(ctx, "stock movement publisher enabled",
			"brokers", cfg.Events.Brokers,
			"topic", cfg.Events.Topic,
		)
	}
	defer func() {
		if err := events.Close(); err != nil {
			applog.Error(ctx, "failed to close event publisher", "error", err)
		}
	}()

	srv, err := newServerFunc(server.Config{
		Addr:      cfg.Server.Addr,
		PublicDir: cfg.Server.PublicDir,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Database: database,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	startErr := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		startErr <- srv.Start()
	}()

	sigCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	select {
	case err := <-startErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
	case <-sigCh:
		applog.Info(ctx, "shutting down http server")
		if err := srv.Stop(); err != nil {
			applog.Error(ctx, "graceful shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}
