package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

// Config is shared by the web frontend and the reference API server; each
// binary reads the fields it needs.
type Config struct {
	// Web frontend
	Port               string        `env:"PORT" envDefault:"8080"`
	BackendURL         string        `env:"BACKEND_URL" envDefault:"http://localhost:5000"`
	ClientTimeout      time.Duration `env:"CLIENT_TIMEOUT" envDefault:"0s"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MaxSessions        int           `env:"MAX_SESSIONS" envDefault:"1000"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	SecureCookies      bool          `env:"SECURE_COOKIES" envDefault:"false"`

	// API server
	APIPort string `env:"API_PORT" envDefault:"5000"`

	// Backend selection
	DataBackend string `env:"DATA_BACKEND" envDefault:"memory"`

	// Database
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/ledger.db"`
	DataFile     string `env:"DATA_FILE"`

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"ledger"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"transaction_events"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	errors = append(errors, validatePort("port", c.Port)...)
	errors = append(errors, validatePort("API port", c.APIPort)...)

	// Validate backend URL
	if u, err := url.Parse(c.BackendURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid backend URL '%s': %v", c.BackendURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid backend URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	} else if u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid backend URL '%s': missing host", c.BackendURL))
	}

	if c.ClientTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid client timeout %v: must not be negative", c.ClientTimeout))
	}

	// Validate session settings
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.MaxSessions < 1 {
		errors = append(errors, fmt.Sprintf("invalid max sessions %d: must be at least 1", c.MaxSessions))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func validatePort(name, value string) []string {
	port, err := strconv.Atoi(value)
	if err != nil {
		return []string{fmt.Sprintf("invalid %s '%s': must be a number", name, value)}
	}
	if port < 1 || port > 65535 {
		return []string{fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port)}
	}
	return nil
}
