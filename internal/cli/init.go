// Package cli provides common CLI initialization utilities shared by
// cmd/ledger-web and cmd/ledger-api.
package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ledger/internal/config"
	applog "ledger/internal/log"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// SetupLogger initializes structured logging at level and sets it as the
// default logger.
func SetupLogger(level string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Server is the lifecycle both binaries run.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Run serves srv until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts it down within timeout. A listen failure is returned.
func Run(ctx context.Context, logger *applog.Logger, srv Server, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
			return err
		}
		return nil
	})

	return g.Wait()
}
