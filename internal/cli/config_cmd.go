package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/config"
)

// configPath returns the --config path, or the default config file location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString(flagConfig); path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}

// NewConfigInitCmd creates the config init command for initializing configuration.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values at
$CYPHERDASH_HOME/config.yaml (default ~/.cypherdash/config.yaml), or at the
path given with --config.`,
		Example: `  # Create the configuration file
  cypherdash config init

  # Create configuration, overwriting existing
  cypherdash config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			// Check if config already exists and force isn't set
			if !force {
				if _, statErr := os.Stat(path); statErr == nil {
					return errors.New("configuration file already exists, use --force to overwrite")
				} else if !os.IsNotExist(statErr) {
					return fmt.Errorf("cannot access config path %s: %w", path, statErr)
				}
			}

			if err = config.New().Save(path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cmd.Printf("Configuration initialized at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the effective value of a configuration key",
		Long:  "Prints the value in effect after the config file and CYPHERDASH_* environment overrides.",
		Example: `  cypherdash config get backend.url
  cypherdash config get output.page_size`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration key in the config file",
		Example: `  cypherdash config set backend.url https://analytics.example.com
  cypherdash config set backend.wallet_timeout 3m
  cypherdash config set output.default_format json`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			// Environment overrides must not be persisted, so start from the file alone.
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("setting %s: %w", args[0], err)
			}
			if err = cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			logger.Info().Ctx(cmd.Context()).Str("key", args[0]).Str("path", path).Msg("configuration updated")
			cmd.Printf("Set %s = %s in %s\n", args[0], args[1], path)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key with its effective value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintln(tw, "Key\tValue")
			fmt.Fprintln(tw, "---\t-----")
			for _, key := range config.Keys() {
				value, err := cfg.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", key, orDash(value))
			}
			return tw.Flush()
		},
	}
}

// NewConfigPathCmd creates the config path command.
func NewConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the location of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// NewConfigValidateCmd creates the config validate command.
func NewConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file and environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			if _, err = config.Load(path); err != nil {
				return fmt.Errorf("configuration is invalid: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", path)
			return nil
		},
	}
}
