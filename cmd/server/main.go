package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/auth"
	"github.com/crucial707/reminders/internal/config"
	"github.com/crucial707/reminders/internal/logger"
	"github.com/crucial707/reminders/internal/scheduler"
	"github.com/crucial707/reminders/internal/seed"
	"github.com/crucial707/reminders/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync(log)
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect storage FIRST
	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	if cfg.SeedEnabled() {
		created, err := seed.DemoUser(ctx, stores.Users, auth.NewHasher(cfg.BcryptCost), cfg.SeedUsername, cfg.SeedPassword)
		if err != nil {
			return err
		}
		log.Warn("demo user seeding is enabled; never use it in production",
			zap.String("username", cfg.SeedUsername), zap.Bool("created", created))
	}

	handler, err := newRouter(cfg, stores, log)
	if err != nil {
		return err
	}

	if cfg.SessionPruneCron != "" {
		go func() {
			if err := scheduler.Run(ctx, cfg.SessionPruneCron, newSessionManager(cfg, stores), log); err != nil {
				log.Error("session pruning disabled", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server LAST
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr), zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage), zap.Bool("tls", cfg.TLSEnabled()))
		if cfg.TLSEnabled() {
			serverErr <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
