package main

import (
	"context"
	"os"
	"time"

	"ledger/internal/backend"
	"ledger/internal/cli"
	applog "ledger/internal/log"
	"ledger/internal/rest"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger := cli.SetupLogger("info")
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}
	}()

	srv := rest.NewServer(":"+cfg.APIPort, result.Backend, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second

	logger.Info("Starting ledger API server",
		"port", cfg.APIPort,
		applog.FieldBackend, cfg.DataBackend,
		"amqp_enabled", cfg.AMQPURL != "",
		applog.FieldOperation, applog.OpStartup)
	if err := cli.Run(context.Background(), logger, srv, cli.ShutdownTimeout); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.APIPort)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
