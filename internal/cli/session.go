package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/backend"
	"github.com/rshade/cypherdash/internal/cache"
	"github.com/rshade/cypherdash/internal/config"
	"github.com/rshade/cypherdash/internal/logging"
)

// session is the backend wiring shared by the commands that fetch data.
type session struct {
	cfg      *config.Config
	client   *backend.Client
	metrics  *backend.Metrics
	explorer analytics.Explorer
	store    *cache.FileStore
	noCache  bool
}

// newSession builds a backend client and response cache from the global
// configuration.
func newSession(noCache bool) (*session, error) {
	cfg := config.GetGlobalConfig()
	metrics := backend.NewMetrics()

	client, err := backend.New(cfg.Backend.URL,
		backend.WithWalletTimeout(cfg.Backend.WalletTimeout),
		backend.WithVolumeTimeout(cfg.Backend.VolumeTimeout),
		backend.WithMetrics(metrics),
		backend.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating backend client: %w", err)
	}

	return &session{
		cfg:      cfg,
		client:   client,
		metrics:  metrics,
		explorer: analytics.NewExplorer(cfg.Backend.ExplorerURL),
		store:    openStore(cfg.Cache),
		noCache:  noCache,
	}, nil
}

// openStore opens the configured cache. A cache that cannot be opened is
// replaced by a disabled one; commands still work, just uncached.
func openStore(cc config.CacheConfig) *cache.FileStore {
	disabled, _ := cache.NewFileStore("", false, 0)
	if !cc.Enabled {
		return disabled
	}
	dir, err := cc.ResolveDir()
	if err == nil {
		var store *cache.FileStore
		if store, err = cache.NewFileStore(dir, true, cc.TTL); err == nil {
			return store
		}
	}
	logger.Warn().Str("component", "cache").Err(err).Msg("response cache unavailable, continuing without it")
	return disabled
}

// runWithSession runs fn against a fresh session. When --metrics-textfile is
// set the request metrics are written afterwards, whether or not fn failed.
func runWithSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	noCache, _ := cmd.Flags().GetBool(flagNoCache)
	s, err := newSession(noCache)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runErr := fn(ctx, s)

	path, _ := cmd.Flags().GetString(flagMetricsTextfile)
	if path == "" {
		return runErr
	}
	if err = s.metrics.WriteTextfile(path); err != nil {
		logger.Warn().Ctx(ctx).Str("operation", "write_metrics").Str("path", path).Err(err).
			Msg("failed to write metrics textfile")
		return errors.Join(runErr, fmt.Errorf("writing metrics textfile: %w", err))
	}
	logger.Debug().Ctx(ctx).Str("path", path).Msg("metrics textfile written")
	return runErr
}

// walletAnalysis is Client.WalletAnalysis behind the response cache. Failed
// fetches are never cached.
func (s *session) walletAnalysis(ctx context.Context, address string) ([]analytics.Counterparty, error) {
	key := cache.Key(backend.OpWalletAnalysis, s.client.BaseURL(), address)
	var rows []analytics.Counterparty
	if s.cached(ctx, key, &rows) {
		return rows, nil
	}

	rows, err := s.client.WalletAnalysis(ctx, address)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, key, rows)
	return rows, nil
}

// volume is Client.Volume behind the response cache.
func (s *session) volume(ctx context.Context, q analytics.VolumeQuery) (analytics.VolumeReport, error) {
	key := cache.Key(backend.OpVolume, s.client.BaseURL(), q.FromDate(), q.ToDate())
	var report analytics.VolumeReport
	if s.cached(ctx, key, &report) {
		return report, nil
	}

	report, err := s.client.Volume(ctx, q)
	if err != nil {
		return analytics.VolumeReport{}, err
	}
	s.remember(ctx, key, report)
	return report, nil
}

func (s *session) cached(ctx context.Context, key string, out any) bool {
	if s.noCache {
		return false
	}
	log := logging.FromContext(ctx)
	hit, err := s.store.GetJSON(key, out)
	if err != nil {
		log.Debug().Str("component", "cache").Err(err).Msg("cache read failed")
		return false
	}
	if hit {
		log.Debug().Str("component", "cache").Str("key", key).Msg("cache hit")
	}
	return hit
}

func (s *session) remember(ctx context.Context, key string, v any) {
	if err := s.store.SetJSON(key, v); err != nil {
		logging.FromContext(ctx).Debug().Str("component", "cache").Err(err).Msg("cache write failed")
	}
}
