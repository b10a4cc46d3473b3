// Package cli holds the start-up steps shared by cmd/spendwatch and
// cmd/alert-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spendwatch/internal/backend"
	"spendwatch/internal/config"
	"spendwatch/internal/log"
	"spendwatch/internal/session"
	"spendwatch/internal/tracker"
)

// LoadConfig loads .env when present, then reads and validates the
// environment.
func LoadConfig() (*config.Config, error) {
	config.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the logger described by cfg, writing to out, and installs
// it as the slog default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    out,
	})
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	log.SetDefault(logger)
	return logger
}

// ServiceOpener returns a function that builds the configured backend and a
// tracker service over it, along with the backend's cleanup.
func ServiceOpener(cfg *config.Config, logger *log.Logger) func(ctx context.Context) (*tracker.Service, func() error, error) {
	factory := backend.NewFactory(logger)

	return func(ctx context.Context) (*tracker.Service, func() error, error) {
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		res, err := factory.CreateBackend(ctx, bcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
		}

		sess := res.Session
		if sess == nil && cfg.APIUserName != "" {
			sess = session.New("", "", cfg.APIUserName)
		}
		return tracker.NewService(res.Store, res.Publisher, sess), res.Close, nil
	}
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. After
// cancellation cleanup runs, bounded by timeout, and done is closed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func() error) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		if cleanup == nil {
			return
		}
		finished := make(chan error, 1)
		go func() { finished <- cleanup() }()

		select {
		case err := <-finished:
			if err != nil {
				logger.Error("Cleanup failed", log.FieldError, err)
				return
			}
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
