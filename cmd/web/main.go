package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
	"github.com/Vijaysathappan4/Tourdoxa/internal/config"
	"github.com/Vijaysathappan4/Tourdoxa/internal/content"
	"github.com/Vijaysathappan4/Tourdoxa/internal/httpserver"
	"github.com/Vijaysathappan4/Tourdoxa/internal/i18n"
	"github.com/Vijaysathappan4/Tourdoxa/internal/observability"
	"github.com/Vijaysathappan4/Tourdoxa/internal/session"
	"github.com/Vijaysathappan4/Tourdoxa/internal/viewstate"
	"github.com/Vijaysathappan4/Tourdoxa/internal/weather"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		fallback, _ := zap.NewProduction()
		fallback.Error("load config", zap.Error(err))
		_ = fallback.Sync()
		return err
	}

	logger, err := observability.NewLogger(observability.LoggerOptions{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("environment", cfg.Environment))

	sessions, err := session.NewManager(session.Config{
		HashKey:      sessionKey(logger, cfg.Session.HashKey, 32, "TOURDOXA_SESSION_HASH_KEY"),
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.CookieSecure,
	})
	if err != nil {
		logger.Error("session manager", zap.Error(err))
		return err
	}

	bundle, err := i18n.Default(cfg.Locale.Default)
	if err != nil {
		logger.Error("load translations", zap.Error(err))
		return err
	}

	cat := catalog.Default()
	registry := viewstate.NewRegistry(viewstate.Config{
		Catalog:         cat,
		Weather:         weather.NewPlaceholderProvider(),
		LocationTimeout: cfg.Views.LocationTimeout,
		IdleTTL:         cfg.Views.IdleTTL,
		MaxPerOwner:     cfg.Views.MaxPerOwner,
		MaxActive:       cfg.Views.MaxActive,
		Logger:          logger,
	})

	srv := httpserver.New(httpserver.Config{
		Address:        cfg.Server.Addr,
		Environment:    cfg.Environment,
		SiteURL:        cfg.Server.SiteURL,
		Sessions:       sessions,
		Registry:       registry,
		Catalog:        cat,
		Content:        content.NewStore(nil),
		I18n:           bundle,
		Logger:         logger,
		CSRFHeaderName: "X-CSRF-Token",
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		registry.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info("server listening", zap.String("addr", cfg.Server.Addr))

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
			stop()
			<-sweeperDone
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	<-sweeperDone
	logger.Info("server stopped", zap.Int("activations_left", registry.Len()))
	return nil
}

// sessionKey returns configured, or a random key when nothing is configured. Random
// keys do not survive a restart; production config requires a configured hash key.
func sessionKey(logger *zap.Logger, configured []byte, length int, env string) []byte {
	if len(configured) > 0 {
		return configured
	}
	logger.Warn("session key not configured; generating an ephemeral key", zap.String("env", env))
	return securecookie.GenerateRandomKey(length)
}
