package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/config"
)

//nolint:gochecknoglobals // Fixed list of formats.
var healthFormats = []string{config.FormatTable, config.FormatJSON, config.FormatYAML}

// healthOutput is the JSON/YAML shape of a health check.
type healthOutput struct {
	Backend string `json:"backend" yaml:"backend"`
	Status  string `json:"status"  yaml:"status"`
}

// NewHealthCmd creates the "health" command.
func NewHealthCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the analytics backend is reachable",
		Example: `  # Check the configured backend
  cypherdash health

  # Check another backend, machine-readable
  cypherdash health --backend-url http://analytics.internal:8000 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(cmd, output, healthFormats)
			if err != nil {
				return err
			}

			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				status, healthErr := s.client.Health(ctx)
				if healthErr != nil {
					return fmt.Errorf("backend %s is not healthy: %w", s.client.BaseURL(), healthErr)
				}

				result := healthOutput{Backend: s.client.BaseURL(), Status: status}
				switch format {
				case config.FormatJSON:
					return writeJSON(cmd.OutOrStdout(), result)
				case config.FormatYAML:
					return writeYAML(cmd.OutOrStdout(), result)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "Backend %s: %s\n", result.Backend, orDash(result.Status))
					return nil
				}
			})
		},
	}

	cmd.Flags().StringVarP(&output, flagOutput, "o", config.DefaultOutputFormat,
		"Output format: table, json, yaml (default from config)")

	return cmd
}
