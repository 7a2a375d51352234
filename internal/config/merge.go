package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names.
const (
	keyBackend = "backend"
	keyOutput  = "output"
	keyLogging = "logging"
	keyCache   = "cache"
)

// knownTopLevelKeys lists the YAML keys that correspond to Config sections.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyBackend: true,
	keyOutput:  true,
	keyLogging: true,
	keyCache:   true,
}

// ShallowMergeYAML loads a YAML file and merges each top-level section onto
// the matching section of target. Fields named in the overlay replace the
// target's values; fields absent from the overlay keep their current value.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file.
	if len(overlay) == 0 {
		return nil
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}
		if err = mergeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// mergeSection decodes node onto a copy of the current section and stores the
// copy only when decoding succeeds, so a malformed section leaves target intact.
func mergeSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyBackend:
		v := target.Backend
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Backend = v
		return nil
	case keyOutput:
		v := target.Output
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Output = v
		return nil
	case keyLogging:
		v := target.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
		return nil
	case keyCache:
		v := target.Cache
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Cache = v
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
