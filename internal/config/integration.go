package config

import (
	"sync"
)

// GlobalConfig holds the global configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects GlobalConfig

// InitGlobalConfig loads the configuration from path into the global instance.
// On error the global instance falls back to defaults and the error is returned.
func InitGlobalConfig(path string) error {
	cfg, err := Load(path)

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if err != nil {
		GlobalConfig = New()
		return err
	}
	GlobalConfig = cfg
	return nil
}

// SetGlobalConfig replaces the global configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	GlobalConfig = cfg
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	GlobalConfig = nil
}

// GetGlobalConfig returns the global configuration, defaulting it if unset.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	cfg := GlobalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if GlobalConfig == nil {
		GlobalConfig = New()
	}
	return GlobalConfig
}

// GetDefaultOutputFormat returns the configured default output format.
func GetDefaultOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// GetPageSize returns the configured default page size.
func GetPageSize() int {
	return GetGlobalConfig().Output.PageSize
}
