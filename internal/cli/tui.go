package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/config"
	"github.com/rshade/cypherdash/internal/logging"
	"github.com/rshade/cypherdash/internal/tui"
)

const flagTheme = "theme"

// ErrNotTerminal is returned when an interactive command is run without a terminal.
var ErrNotTerminal = errors.New("interactive mode requires a terminal; use 'wallet analyze' or 'volume show' instead")

// NewWalletTUICmd creates the "wallet tui" command.
func NewWalletTUICmd() *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "tui [ADDRESS]",
		Short: "Interactive wallet analysis dashboard",
		Long: `Opens the wallet dashboard. With an ADDRESS argument the analysis starts
immediately; otherwise enter an address in the input field.

Keys: / filter, 1-6 sort by column, ←/→ page, +/- page size, enter details,
a new address, r refresh, t toggle theme, q quit.`,
		Example: `  # Start with an address
  cypherdash wallet tui 0x4838b106fce9647bdf1e7877bf73ce8b0bad5f97

  # Start at the address prompt with the dark theme
  cypherdash wallet tui --theme dark`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			selected, err := resolveTheme(cmd, theme)
			if err != nil {
				return err
			}

			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				opts := tui.WalletOptions{
					PageSize: s.cfg.Output.PageSize,
					Theme:    selected,
					Explorer: s.explorer,
					Logger:   logging.ComponentLogger(logger, "tui"),
				}
				if len(args) == 1 {
					address, normErr := analytics.NormalizeAddress(args[0])
					if normErr != nil {
						return normErr
					}
					opts.Address = address
				}
				return runProgram(ctx, tui.NewWalletModel(ctx, s.walletAnalysis, opts))
			})
		},
	}

	cmd.Flags().StringVar(&theme, flagTheme, "", "Color theme: light or dark (default from config)")

	return cmd
}

// NewVolumeTUICmd creates the "volume tui" command.
func NewVolumeTUICmd() *cobra.Command {
	var (
		flags volumeFlags
		theme string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive trading volume dashboard",
		Long: `Opens the volume dashboard on the given date range.

Keys: 1-3 or tab switch series, s/p sort by volume or period, b toggle bars,
e edit dates, r refresh, t toggle theme, q quit.`,
		Example: `  # Default range, daily series
  cypherdash volume tui

  # Weekly series for the second half of 2025
  cypherdash volume tui --from 2025-07-01 --to 2025-12-31 --granularity weekly`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			query, granularity, err := flags.parse()
			if err != nil {
				return err
			}
			selected, err := resolveTheme(cmd, theme)
			if err != nil {
				return err
			}

			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				model := tui.NewVolumeModel(ctx, s.volume, tui.VolumeOptions{
					Query:       query,
					Granularity: granularity,
					Theme:       selected,
					Logger:      logging.ComponentLogger(logger, "tui"),
				})
				return runProgram(ctx, model)
			})
		},
	}

	flags.bind(cmd, analytics.Daily)
	cmd.Flags().StringVar(&theme, flagTheme, "", "Color theme: light or dark (default from config)")

	return cmd
}

// resolveTheme picks the --theme flag when set, else the configured theme.
func resolveTheme(cmd *cobra.Command, flagValue string) (tui.Theme, error) {
	name := config.GetGlobalConfig().Output.Theme
	if cmd.Flags().Changed(flagTheme) {
		name = flagValue
	}
	if name != config.ThemeLight && name != config.ThemeDark {
		return tui.Theme{}, fmt.Errorf("%w: %q", config.ErrInvalidTheme, name)
	}
	return tui.ThemeByName(name), nil
}

// runProgram runs model full screen until it quits or ctx is cancelled.
func runProgram(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running dashboard: %w", err)
	}
	logger.Debug().Ctx(ctx).Msg("dashboard closed")
	return nil
}
