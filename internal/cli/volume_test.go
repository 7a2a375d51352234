package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/cli"
	"github.com/rshade/cypherdash/internal/cli/pagination"
)

func TestVolumeShow_Table(t *testing.T) {
	setupCLITest(t)
	fb := newFakeBackend(t)

	t.Run("all series", func(t *testing.T) {
		out, _, err := executeCmd(t, "volume", "show", "--backend-url", fb.URL)
		require.NoError(t, err)

		assert.Contains(t, out, "Trading volume 2025-01-01 to 2025-12-31")
		daily := strings.Index(out, "Daily Volume")
		weekly := strings.Index(out, "Weekly Volume")
		monthly := strings.Index(out, "Monthly Volume")
		require.NotEqual(t, -1, daily)
		assert.Less(t, daily, weekly)
		assert.Less(t, weekly, monthly)
		assert.Contains(t, out, "Total: $350.50")
		assert.Contains(t, out, "Total: $2,000.25")
	})

	t.Run("single series with bars", func(t *testing.T) {
		out, _, err := executeCmd(t, "volume", "show", "--backend-url", fb.URL,
			"--granularity", "monthly", "--bars")
		require.NoError(t, err)

		assert.NotContains(t, out, "Daily Volume")
		assert.Contains(t, out, "Monthly Volume")
		assert.Contains(t, out, "█")
		assert.Contains(t, out, "$1,200.00")
	})
}

func TestVolumeShow_JSONSorted(t *testing.T) {
	setupCLITest(t)
	fb := newFakeBackend(t)

	out, _, err := executeCmd(t, "volume", "show", "--backend-url", fb.URL,
		"--granularity", "monthly", "--sort", "usd:desc", "--output", "json",
		"--from", "2025-01-01", "--to", "2025-02-28")
	require.NoError(t, err)

	var doc struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Series []struct {
			Granularity string                  `json:"granularity"`
			Points      []analytics.VolumePoint `json:"points"`
			TotalUSD    float64                 `json:"total_usd"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2025-01-01", doc.From)
	assert.Equal(t, "2025-02-28", doc.To)
	require.Len(t, doc.Series, 1)
	assert.Equal(t, "monthly", doc.Series[0].Granularity)
	require.Len(t, doc.Series[0].Points, 2)
	assert.Equal(t, "2025-02", doc.Series[0].Points[0].PeriodLabel)
	assert.Equal(t, "2025-01", doc.Series[0].Points[1].PeriodLabel)
	assert.InDelta(t, 2000.25, doc.Series[0].TotalUSD, 0.001)
}

func TestVolumeShow_InvalidFlags(t *testing.T) {
	setupCLITest(t)
	fb := newFakeBackend(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "reversed range", args: []string{"--from", "2025-12-31", "--to", "2025-01-01"},
			wantErr: analytics.ErrInvalidDateRange},
		{name: "bad date", args: []string{"--from", "01/01/2025"}, wantErr: analytics.ErrInvalidDate},
		{name: "bad granularity", args: []string{"--granularity", "hourly"}, wantErr: analytics.ErrInvalidGranularity},
		{name: "bad sort field", args: []string{"--sort", "tx_count"}, wantErr: pagination.ErrInvalidSortField},
		{name: "ndjson unsupported", args: []string{"--output", "ndjson"}, wantErr: cli.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"volume", "show", "--backend-url", fb.URL}, tt.args...)
			_, _, err := executeCmd(t, args...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Zero(t, fb.volumeHits.Load())
}

func TestVolumeChart(t *testing.T) {
	setupCLITest(t)
	fb := newFakeBackend(t)

	t.Run("writes a PNG", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "monthly.png")
		_, _, err := executeCmd(t, "volume", "chart", "--backend-url", fb.URL,
			"--out", path, "--width", "640", "--height", "320")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
	})

	t.Run("rejects all granularities", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "all.png")
		_, _, err := executeCmd(t, "volume", "chart", "--backend-url", fb.URL,
			"--out", path, "--granularity", "all")
		require.ErrorIs(t, err, cli.ErrChartGranularity)
		assert.NoFileExists(t, path)
	})

	t.Run("requires --out", func(t *testing.T) {
		_, _, err := executeCmd(t, "volume", "chart", "--backend-url", fb.URL)
		require.Error(t, err)
	})
}
