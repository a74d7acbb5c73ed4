package main

import (
	"context"
	"os"
	"time"

	"ledger/internal/api"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	applog "ledger/internal/log"
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

	client := api.NewClient(cfg.BackendURL, api.WithTimeout(cfg.ClientTimeout))

	srv := apphttp.NewServer(":"+cfg.Port, client, apphttp.Options{
		Logger:             logger,
		SessionTTL:         cfg.SessionTTL,
		MaxSessions:        cfg.MaxSessions,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SecureCookies:      cfg.SecureCookies,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting ledger web server",
		"port", cfg.Port,
		"backend_url", cfg.BackendURL,
		applog.FieldOperation, applog.OpStartup)
	if err := cli.Run(context.Background(), logger, srv, cli.ShutdownTimeout); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
