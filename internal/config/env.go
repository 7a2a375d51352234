package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvHome        = "CYPHERDASH_HOME"
	EnvBackendURL  = "CYPHERDASH_BACKEND_URL"
	EnvExplorerURL = "CYPHERDASH_EXPLORER_URL"
	EnvLogLevel    = "CYPHERDASH_LOG_LEVEL"
	EnvLogFormat   = "CYPHERDASH_LOG_FORMAT"
	EnvTheme       = "CYPHERDASH_THEME"
	EnvPageSize    = "CYPHERDASH_PAGE_SIZE"
	EnvCache       = "CYPHERDASH_CACHE"
	EnvCacheTTL    = "CYPHERDASH_CACHE_TTL"
)

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables that are already set. Missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables.
func ApplyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvBackendURL); ok && v != "" {
		cfg.Backend.URL = v
	}
	if v, ok := lookupEnv(EnvExplorerURL); ok && v != "" {
		cfg.Backend.ExplorerURL = v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := lookupEnv(EnvTheme); ok && v != "" {
		cfg.Output.Theme = v
	}
	if v, ok := lookupEnv(EnvPageSize); ok && v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		cfg.Output.PageSize = size
	}
	if v, ok := lookupEnv(EnvCache); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCache, err)
		}
		cfg.Cache.Enabled = enabled
	}
	if v, ok := lookupEnv(EnvCacheTTL); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		cfg.Cache.TTL = ttl
	}
	return nil
}
