package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/cli"
	"github.com/rshade/cypherdash/internal/config"
)

const (
	testWallet    = "0x4838b106fce9647bdf1e7877bf73ce8b0bad5f97"
	failingWallet = "0x000000000000000000000000000000000000dead"
	counterpartyN = 23
)

// setupCLITest isolates the config home and environment and registers cleanup
// for the global config.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	for _, key := range []string{
		config.EnvBackendURL, config.EnvExplorerURL, config.EnvLogFormat,
		config.EnvTheme, config.EnvPageSize, config.EnvCache, config.EnvCacheTTL,
	} {
		t.Setenv(key, "")
	}
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

// executeCmd runs the root command with args and returns stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeBackend serves canned analytics responses and counts requests.
type fakeBackend struct {
	*httptest.Server
	walletHits atomic.Int32
	volumeHits atomic.Int32
}

// testCounterparties returns counterpartyN rows where row i has 3*i
// transactions; even rows are labelled Uniswap contracts.
func testCounterparties() []analytics.Counterparty {
	rows := make([]analytics.Counterparty, 0, counterpartyN)
	for i := 1; i <= counterpartyN; i++ {
		c := analytics.Counterparty{
			Address:         counterpartyAddress(i),
			TxCount:         3 * i,
			Type:            analytics.TypeWallet,
			LastInteraction: fmt.Sprintf("%d", 1735689600+i*86400),
		}
		if i%2 == 0 {
			c.Type = analytics.TypeContract
			c.Label = fmt.Sprintf("Uniswap Router %d", i)
			c.LastTxHash = fmt.Sprintf("0x%064x", i)
		}
		rows = append(rows, c)
	}
	return rows
}

func counterpartyAddress(i int) string {
	return fmt.Sprintf("0x%040x", i)
}

const volumeBody = `{
  "daily": [
    {"period_label": "2025-01-01", "usd": 100.5},
    {"period_label": "2025-01-02", "usd": 250}
  ],
  "weekly": [
    {"period_label": "2025-W01", "usd": 350.5}
  ],
  "monthly": [
    {"period_label": "2025-01", "usd": 800.25},
    {"period_label": "2025-02", "usd": 1200}
  ]
}`

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /wallet-analysis", func(w http.ResponseWriter, r *http.Request) {
		fb.walletHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("address") == failingWallet {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail": "indexer unavailable"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(testCounterparties())
	})
	mux.HandleFunc("GET /load-volume", func(w http.ResponseWriter, _ *http.Request) {
		fb.volumeHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(volumeBody))
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "backend up"}`))
	})

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}
