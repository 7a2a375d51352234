package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/cypherdash/internal/config"
	"github.com/rshade/cypherdash/internal/logging"
)

// Persistent flag names.
const (
	flagDebug           = "debug"
	flagBackendURL      = "backend-url"
	flagConfig          = "config"
	flagMetricsTextfile = "metrics-textfile"
	flagNoCache         = "no-cache"
)

// Command annotations read by the root pre-run hook.
const (
	// annotationTUI marks commands that take over the terminal; their logs
	// must not reach stderr.
	annotationTUI = "cypherdash.tui"

	// annotationTolerateConfig marks commands that still run when the config
	// file is broken, so the user can inspect or replace it.
	annotationTolerateConfig = "cypherdash.tolerate-config"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the cypherdash CLI.
// It loads .env and the config file, wires up logging and tracing, and
// registers the wallet, volume, health and config command groups.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "cypherdash",
		Short:         "Terminal dashboard for on-chain wallet and trading volume analytics",
		Long:          "cypherdash: browse wallet counterparties and trading volume served by the analytics backend",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return fmt.Errorf("loading .env: %w", err)
			}

			configPath, _ := cmd.Flags().GetString(flagConfig)
			if err := config.InitGlobalConfig(configPath); err != nil {
				if !hasAnnotation(cmd, annotationTolerateConfig) {
					return fmt.Errorf("loading configuration: %w", err)
				}
				cmd.PrintErrf("Warning: %v (using defaults)\n", err)
			}

			// CLI flags override environment variables and the config file
			if cmd.Flags().Changed(flagBackendURL) {
				backendURL, _ := cmd.Flags().GetString(flagBackendURL)
				cfg := config.GetGlobalConfig()
				cfg.Backend.URL = backendURL
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid --%s: %w", flagBackendURL, err)
				}
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool(flagDebug, false, "enable debug logging")
	cmd.PersistentFlags().String(flagBackendURL, "",
		"analytics backend base URL (overrides config file and CYPHERDASH_BACKEND_URL)")
	cmd.PersistentFlags().String(flagConfig, "",
		"path to the config file (default $CYPHERDASH_HOME/config.yaml)")
	cmd.PersistentFlags().String(flagMetricsTextfile, "",
		"write backend request metrics to this file in node-exporter textfile format")
	cmd.PersistentFlags().Bool(flagNoCache, false, "bypass the response cache and fetch fresh data")
	cmd.AddCommand(newWalletCmd(), newVolumeCmd(), NewHealthCmd(), newConfigCmd(), newCacheCmd())

	return cmd
}

const rootCmdExample = `  # Analyze the counterparties of a wallet
  cypherdash wallet analyze 0x4838b106fce9647bdf1e7877bf73ce8b0bad5f97

  # Compare two wallets, busiest counterparties first, as JSON
  cypherdash wallet analyze 0xabc... 0xdef... --sort tx_count:desc --output json

  # Open the interactive wallet dashboard
  cypherdash wallet tui 0x4838b106fce9647bdf1e7877bf73ce8b0bad5f97

  # Monthly trading volume for the first half of 2025
  cypherdash volume show --from 2025-01-01 --to 2025-06-30 --granularity monthly

  # Render daily volume as a PNG bar chart
  cypherdash volume chart --granularity daily --out daily.png

  # Check that the backend is up
  cypherdash health --backend-url http://localhost:8000

  # Initialize configuration
  cypherdash config init

  # Drop cached backend responses
  cypherdash cache clear`

// newWalletCmd creates the wallet command group.
func newWalletCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "wallet", Short: "Wallet counterparty analysis"}
	cmd.AddCommand(NewWalletAnalyzeCmd(), NewWalletTUICmd())
	return cmd
}

// newVolumeCmd creates the volume command group.
func newVolumeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "volume", Short: "Trading volume reports"}
	cmd.AddCommand(NewVolumeShowCmd(), NewVolumeChartCmd(), NewVolumeTUICmd())
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Inspect and clear the response cache"}
	cmd.AddCommand(NewCacheStatsCmd(), NewCacheClearCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration management commands",
		Annotations: map[string]string{annotationTolerateConfig: "true"},
	}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigPathCmd(), NewConfigValidateCmd(),
	)
	return cmd
}

// hasAnnotation reports whether cmd or any of its parents carries key.
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}
