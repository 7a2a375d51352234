// Package config loads cypherdash settings from YAML, .env files and the environment.
//
// Precedence, lowest to highest: built-in defaults, config.yaml, .env, process
// environment, CLI flags (applied by the cli package).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/cache"
)

// Defaults.
const (
	DefaultBackendURL    = "http://localhost:8000"
	DefaultWalletTimeout = 100 * time.Second
	DefaultVolumeTimeout = 10 * time.Second
	DefaultOutputFormat  = FormatTable
	DefaultPageSize      = 10
	DefaultTheme         = ThemeLight
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	configFileName       = "config.yaml"
	configDirName        = ".cypherdash"
	cacheDirName         = "cache"
	configFilePerm       = 0o600
	configDirPerm        = 0o700
)

// Output formats.
const (
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatYAML   = "yaml"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Validation errors.
var (
	ErrInvalidBackendURL = errors.New("backend.url must be an absolute http(s) URL")
	ErrInvalidTimeout    = errors.New("timeouts must be positive")
	ErrInvalidPageSize   = errors.New("output.page_size must be greater than 0")
	ErrInvalidFormat     = errors.New("output.default_format must be one of table, json, ndjson, yaml")
	ErrInvalidTheme      = errors.New("output.theme must be light or dark")
	ErrInvalidLogFormat  = errors.New("logging.format must be console or json")
)

// Config is the complete cypherdash configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Cache   CacheConfig   `yaml:"cache"`
}

// BackendConfig locates the analytics backend.
type BackendConfig struct {
	URL           string        `yaml:"url"`
	WalletTimeout time.Duration `yaml:"wallet_timeout"`
	VolumeTimeout time.Duration `yaml:"volume_timeout"`
	ExplorerURL   string        `yaml:"explorer_url"`
}

// OutputConfig controls rendering defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	PageSize      int    `yaml:"page_size"`
	Theme         string `yaml:"theme"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// CacheConfig controls the on-disk response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	// Dir defaults to the cache directory inside the config directory.
	Dir string `yaml:"dir,omitempty"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:           DefaultBackendURL,
			WalletTimeout: DefaultWalletTimeout,
			VolumeTimeout: DefaultVolumeTimeout,
			ExplorerURL:   analytics.DefaultExplorerURL,
		},
		Output: OutputConfig{
			DefaultFormat: DefaultOutputFormat,
			PageSize:      DefaultPageSize,
			Theme:         DefaultTheme,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     cache.DefaultTTL,
		},
	}
}

// ResolveDir returns Dir, or the default cache directory when Dir is empty.
func (c CacheConfig) ResolveDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheDirName), nil
}

// GetConfigDir returns $CYPHERDASH_HOME or ~/.cypherdash.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName), nil
}

// DefaultConfigPath returns the config.yaml path inside the config directory.
func DefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load builds a Config from defaults, the YAML file at path (the default path
// when empty; a missing file is not an error) and the process environment.
func Load(path string) (*Config, error) {
	cfg, path, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err = ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile is Load without environment overrides: the result reflects only
// what is stored in the file, which is what "config set" must write back.
func LoadFile(path string) (*Config, error) {
	cfg, path, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// readFile merges the file at path onto the defaults and returns the resolved path.
func readFile(path string) (*Config, string, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, "", err
		}
	}

	cfg := New()
	if _, err := os.Stat(path); err == nil {
		if err = ShallowMergeYAML(cfg, path); err != nil {
			return nil, "", err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("reading config file %s: %w", path, err)
	}
	return cfg, path, nil
}

// Save writes cfg as YAML to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBackendURL, c.Backend.URL)
	}
	if c.Backend.WalletTimeout <= 0 || c.Backend.VolumeTimeout <= 0 {
		return fmt.Errorf("%w: wallet=%s volume=%s", ErrInvalidTimeout,
			c.Backend.WalletTimeout, c.Backend.VolumeTimeout)
	}
	if c.Output.PageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.Output.PageSize)
	}
	if !IsValidFormat(c.Output.DefaultFormat) {
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.Output.DefaultFormat)
	}
	if c.Output.Theme != ThemeLight && c.Output.Theme != ThemeDark {
		return fmt.Errorf("%w: got %q", ErrInvalidTheme, c.Output.Theme)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	if c.Cache.Enabled {
		if err = cache.ValidateTTL(c.Cache.TTL); err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
	}
	return nil
}

// IsValidFormat reports whether format is a known output format.
func IsValidFormat(format string) bool {
	switch format {
	case FormatTable, FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}
