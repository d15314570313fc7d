package odoo

import (
	"os"
	"strconv"
)

// Config holds all configuration for the RPC gateway.
type Config struct {
	URL        string
	Database   string
	TimeoutMs  int
	MaxRetries int // applies to read calls only; submissions never retry
	LogCalls   bool
	ReadLimit  int // max records per search_read
}

// DefaultConfig returns a Config with sensible defaults. The URL and
// database have no useful default and must come from the environment or
// flags.
func DefaultConfig() Config {
	return Config{
		URL:        "http://localhost:8069/jsonrpc",
		Database:   "odoo",
		TimeoutMs:  15000,
		MaxRetries: 0,
		LogCalls:   false,
		ReadLimit:  80,
	}
}

// LoadConfig reads gateway configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PRESENCIA_RPC_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("PRESENCIA_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("PRESENCIA_RPC_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("PRESENCIA_RPC_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("PRESENCIA_LOG_RPC"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PRESENCIA_READ_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReadLimit = n
		}
	}

	return cfg
}
