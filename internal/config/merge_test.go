package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cypherdash/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleSection(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
output:
  default_format: json
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "json", target.Output.DefaultFormat)
	// Fields absent from the overlay keep their values.
	assert.Equal(t, config.DefaultPageSize, target.Output.PageSize)
	assert.Equal(t, config.ThemeLight, target.Output.Theme)
	// Other sections are untouched.
	assert.Equal(t, config.DefaultBackendURL, target.Backend.URL)
	assert.Equal(t, "info", target.Logging.Level)
}

func TestShallowMergeYAML_MultipleSections(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
backend:
  url: https://api.example.com
  wallet_timeout: 30s
logging:
  level: debug
  format: json
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "https://api.example.com", target.Backend.URL)
	assert.Equal(t, 30*time.Second, target.Backend.WalletTimeout)
	assert.Equal(t, config.DefaultVolumeTimeout, target.Backend.VolumeTimeout)
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Equal(t, "json", target.Logging.Format)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
plugins:
  foo: bar
output:
  theme: dark
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, config.ThemeDark, target.Output.Theme)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, "# only a comment\n")

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, config.New(), target)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		err := config.ShallowMergeYAML(nil, "unused")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.New(), filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading overlay file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		overlay := writeOverlay(t, "output: [unterminated\n")
		err := config.ShallowMergeYAML(config.New(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})

	t.Run("bad section type leaves target intact", func(t *testing.T) {
		target := config.New()
		overlay := writeOverlay(t, `
output:
  page_size: lots
`)
		err := config.ShallowMergeYAML(target, overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"output"`)
		assert.Equal(t, config.DefaultPageSize, target.Output.PageSize)
	})
}
