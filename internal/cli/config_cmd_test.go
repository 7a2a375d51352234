package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cypherdash/internal/config"
)

func TestConfigInit(t *testing.T) {
	home := setupCLITest(t)
	path := filepath.Join(home, "config.yaml")

	out, _, err := executeCmd(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at")
	assert.FileExists(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, _, err = executeCmd(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCmd(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_CustomPath(t *testing.T) {
	setupCLITest(t)
	path := filepath.Join(t.TempDir(), "nested", "cypherdash.yaml")

	_, _, err := executeCmd(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	out, _, err := executeCmd(t, "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))
}

func TestConfigSetGet(t *testing.T) {
	setupCLITest(t)

	_, _, err := executeCmd(t, "config", "set", "output.page_size", "25")
	require.NoError(t, err)

	out, _, err := executeCmd(t, "config", "get", "output.page_size")
	require.NoError(t, err)
	assert.Equal(t, "25", strings.TrimSpace(out))

	_, _, err = executeCmd(t, "config", "set", "backend.wallet_timeout", "3m")
	require.NoError(t, err)
	out, _, err = executeCmd(t, "config", "get", "backend.wallet_timeout")
	require.NoError(t, err)
	assert.Equal(t, "3m0s", strings.TrimSpace(out))

	t.Run("invalid value leaves file untouched", func(t *testing.T) {
		_, _, err = executeCmd(t, "config", "set", "output.theme", "neon")
		require.ErrorIs(t, err, config.ErrInvalidTheme)

		out, _, err = executeCmd(t, "config", "get", "output.theme")
		require.NoError(t, err)
		assert.Equal(t, config.ThemeLight, strings.TrimSpace(out))
	})

	t.Run("unknown key", func(t *testing.T) {
		_, _, err = executeCmd(t, "config", "get", "backend.password")
		require.ErrorIs(t, err, config.ErrUnknownKey)

		_, _, err = executeCmd(t, "config", "set", "backend.password", "x")
		require.ErrorIs(t, err, config.ErrUnknownKey)
	})

	t.Run("environment overrides are not persisted", func(t *testing.T) {
		t.Setenv(config.EnvBackendURL, "https://env.example.com")

		_, _, err = executeCmd(t, "config", "set", "output.theme", "dark")
		require.NoError(t, err)

		cfg, loadErr := config.LoadFile("")
		require.NoError(t, loadErr)
		assert.Equal(t, config.DefaultBackendURL, cfg.Backend.URL)
		assert.Equal(t, config.ThemeDark, cfg.Output.Theme)
	})
}

func TestConfigList(t *testing.T) {
	setupCLITest(t)
	t.Setenv(config.EnvTheme, "dark")

	out, _, err := executeCmd(t, "config", "list")
	require.NoError(t, err)

	for _, key := range config.Keys() {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, config.DefaultBackendURL)
	assert.Regexp(t, `output\.theme\s+dark`, out)
}

func TestConfigValidate(t *testing.T) {
	setupCLITest(t)

	out, _, err := executeCmd(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}
