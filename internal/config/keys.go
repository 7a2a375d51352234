package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrUnknownKey is returned by Get and Set for keys outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

// Keys returns every dotted key accepted by Get and Set, in display order.
func Keys() []string {
	return []string{
		"backend.url",
		"backend.wallet_timeout",
		"backend.volume_timeout",
		"backend.explorer_url",
		"output.default_format",
		"output.page_size",
		"output.theme",
		"logging.level",
		"logging.format",
		"logging.file",
		"cache.enabled",
		"cache.ttl",
		"cache.dir",
	}
}

// Get returns the string form of a dotted key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "backend.url":
		return c.Backend.URL, nil
	case "backend.wallet_timeout":
		return c.Backend.WalletTimeout.String(), nil
	case "backend.volume_timeout":
		return c.Backend.VolumeTimeout.String(), nil
	case "backend.explorer_url":
		return c.Backend.ExplorerURL, nil
	case "output.default_format":
		return c.Output.DefaultFormat, nil
	case "output.page_size":
		return strconv.Itoa(c.Output.PageSize), nil
	case "output.theme":
		return c.Output.Theme, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.file":
		return c.Logging.File, nil
	case "cache.enabled":
		return strconv.FormatBool(c.Cache.Enabled), nil
	case "cache.ttl":
		return c.Cache.TTL.String(), nil
	case "cache.dir":
		return c.Cache.Dir, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set assigns a dotted key from its string form and re-validates. On a
// validation failure the previous value is restored.
func (c *Config) Set(key, value string) error {
	prev := *c
	if err := c.assign(key, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		*c = prev
		return err
	}
	return nil
}

func (c *Config) assign(key, value string) error {
	switch key {
	case "backend.url":
		c.Backend.URL = value
	case "backend.wallet_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Backend.WalletTimeout = d
	case "backend.volume_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Backend.VolumeTimeout = d
	case "backend.explorer_url":
		c.Backend.ExplorerURL = value
	case "output.default_format":
		c.Output.DefaultFormat = value
	case "output.page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Output.PageSize = n
	case "output.theme":
		c.Output.Theme = value
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "logging.file":
		c.Logging.File = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Cache.Enabled = b
	case "cache.ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Cache.TTL = d
	case "cache.dir":
		c.Cache.Dir = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
