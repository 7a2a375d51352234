package backend

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.observe(OpVolume, outcomeOK, 120*time.Millisecond)

	path := filepath.Join(t.TempDir(), "cypherdash.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cypherdash_backend_requests_total{endpoint="load-volume",outcome="ok"} 1`)
	assert.Contains(t, string(data), "cypherdash_backend_request_duration_seconds_bucket")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(OpHealth, outcomeOK, time.Second) })
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, m.Registry())
}
