package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/cache"
	"github.com/rshade/cypherdash/internal/config"
)

//nolint:gochecknoglobals // Fixed list of formats.
var cacheFormats = []string{config.FormatTable, config.FormatJSON, config.FormatYAML}

// cacheStatsOutput is the JSON/YAML shape of "cache stats".
type cacheStatsOutput struct {
	Enabled   bool   `json:"enabled"             yaml:"enabled"`
	Directory string `json:"directory,omitempty" yaml:"directory,omitempty"`
	TTL       string `json:"ttl,omitempty"       yaml:"ttl,omitempty"`

	cache.Stats `yaml:",inline"`
}

// NewCacheStatsCmd creates the "cache stats" command.
func NewCacheStatsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how many backend responses are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(cmd, output, cacheFormats)
			if err != nil {
				return err
			}

			store := openStore(config.GetGlobalConfig().Cache)
			result := cacheStatsOutput{Enabled: store.IsEnabled()}
			if store.IsEnabled() {
				if result.Stats, err = store.Stats(); err != nil {
					return fmt.Errorf("reading cache: %w", err)
				}
				result.Directory = store.Directory()
				result.TTL = cache.FormatDuration(store.TTL())
			}

			switch format {
			case config.FormatJSON:
				return writeJSON(cmd.OutOrStdout(), result)
			case config.FormatYAML:
				return writeYAML(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			if !result.Enabled {
				fmt.Fprintln(out, "Cache is disabled.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, tabPadding, ' ', 0)
			fmt.Fprintf(tw, "Directory\t%s\n", result.Directory)
			fmt.Fprintf(tw, "TTL\t%s\n", result.TTL)
			fmt.Fprintf(tw, "Entries\t%d\n", result.Entries)
			fmt.Fprintf(tw, "Expired\t%d\n", result.Expired)
			fmt.Fprintf(tw, "Size\t%d bytes\n", result.SizeBytes)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&output, flagOutput, "o", config.DefaultOutputFormat,
		"Output format: table, json, yaml (default from config)")

	return cmd
}

// NewCacheClearCmd creates the "cache clear" command.
func NewCacheClearCmd() *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached backend responses",
		Example: `  # Drop everything
  cypherdash cache clear

  # Only drop entries past their TTL
  cypherdash cache clear --expired`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := openStore(config.GetGlobalConfig().Cache)
			if !store.IsEnabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
				return nil
			}

			var (
				removed int
				err     error
			)
			if expiredOnly {
				removed, err = store.CleanupExpired()
			} else {
				removed, err = store.Clear()
			}
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			logger.Info().Ctx(cmd.Context()).Str("directory", store.Directory()).Int("removed", removed).
				Bool("expired_only", expiredOnly).Msg("cache cleared")
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only remove entries past their TTL")

	return cmd
}
