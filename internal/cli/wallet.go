package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/cli/pagination"
	"github.com/rshade/cypherdash/internal/config"
)

// maxConcurrentWallets bounds parallel wallet analyses. Each one is a slow
// full-history scan on the backend.
const maxConcurrentWallets = 4

const lastInteractionLayout = "2006-01-02 15:04"

// ErrWalletAnalysisFailed is returned after rendering when any address failed.
var ErrWalletAnalysisFailed = errors.New("wallet analysis failed")

//nolint:gochecknoglobals // Fixed list of formats.
var walletFormats = []string{config.FormatTable, config.FormatJSON, config.FormatNDJSON, config.FormatYAML}

// walletFetcher returns the counterparties of one address.
type walletFetcher func(ctx context.Context, address string) ([]analytics.Counterparty, error)

// walletResult is the outcome of one address fetch.
type walletResult struct {
	address string
	rows    []analytics.Counterparty
	err     error
}

// walletReport is the JSON/YAML shape of one analyzed wallet.
type walletReport struct {
	Address        string                     `json:"address"                  yaml:"address"`
	Counterparties []analytics.Counterparty   `json:"counterparties"           yaml:"counterparties"`
	Pagination     *pagination.PaginationMeta `json:"pagination,omitempty"     yaml:"pagination,omitempty"`
	Error          string                     `json:"error,omitempty"          yaml:"error,omitempty"`
}

// walletRow is one NDJSON line: a counterparty tagged with the analyzed wallet.
type walletRow struct {
	Wallet string `json:"wallet"`
	analytics.Counterparty
}

// walletErrorRow is the NDJSON line emitted for a failed address.
type walletErrorRow struct {
	Wallet string `json:"wallet"`
	Error  string `json:"error"`
}

// NewWalletAnalyzeCmd creates the "wallet analyze" command.
func NewWalletAnalyzeCmd() *cobra.Command {
	params := pagination.NewParams(config.DefaultPageSize)
	var output string

	cmd := &cobra.Command{
		Use:   "analyze ADDRESS...",
		Short: "List the counterparties of one or more wallets",
		Long: `Fetches the counterparty analysis of each address from the backend and prints
one page of it, filtered and sorted as requested. Several addresses are fetched
concurrently and rendered in argument order. A failed address is reported in
its own section; the command exits non-zero after printing the others.`,
		Example: `  # Top counterparties by transaction count
  cypherdash wallet analyze 0x4838b106fce9647bdf1e7877bf73ce8b0bad5f97

  # Only contracts, second page of 20
  cypherdash wallet analyze 0x4838... --filter contract --page 2 --page-size 20

  # Sort by label, everything at once, as NDJSON
  cypherdash wallet analyze 0x4838... --sort label:asc --all --output ndjson`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed(pagination.FlagPageSize) {
				params.PageSize = config.GetPageSize()
			}
			format, err := resolveFormat(cmd, output, walletFormats)
			if err != nil {
				return err
			}

			// Reject bad flags before paying for a slow fetch.
			if err = pagination.Apply(analytics.NewCounterpartyEngine(params.PageSize), *params); err != nil {
				return err
			}

			addresses := make([]string, 0, len(args))
			for _, arg := range args {
				address, normErr := analytics.NormalizeAddress(arg)
				if normErr != nil {
					return normErr
				}
				if !analytics.LooksLikeEVMAddress(address) {
					logger.Warn().Ctx(cmd.Context()).Str("address", address).
						Msg("address does not look like an EVM address, querying anyway")
				}
				addresses = append(addresses, address)
			}

			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				results := fetchWallets(ctx, s.walletAnalysis, addresses)
				return renderWallets(cmd.OutOrStdout(), format, results, *params)
			})
		},
	}

	params.Bind(cmd, analytics.CounterpartySchema.SortedFieldNames())
	cmd.Flags().StringVarP(&output, flagOutput, "o", config.DefaultOutputFormat,
		"Output format: table, json, ndjson, yaml (default from config)")

	return cmd
}

// fetchWallets analyzes every address concurrently. Failures are kept per
// address so one bad wallet does not cancel the others.
func fetchWallets(ctx context.Context, fetch walletFetcher, addresses []string) []walletResult {
	results := make([]walletResult, len(addresses))

	var g errgroup.Group
	g.SetLimit(maxConcurrentWallets)
	for i, address := range addresses {
		g.Go(func() error {
			rows, err := fetch(ctx, address)
			if err != nil {
				logger.Warn().Ctx(ctx).Str("operation", "wallet_analyze").Str("address", address).
					Err(err).Msg("wallet analysis failed")
			}
			results[i] = walletResult{address: address, rows: rows, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// renderWallets prints every result in order and reports whether any failed.
func renderWallets(w io.Writer, format string, results []walletResult, params pagination.Params) error {
	reports := make([]walletReport, 0, len(results))
	failed := 0
	for _, res := range results {
		report, err := buildWalletReport(res, params)
		if err != nil {
			return err
		}
		if report.Error != "" {
			failed++
		}
		reports = append(reports, report)
	}

	var err error
	switch format {
	case config.FormatJSON:
		err = writeJSON(w, reports)
	case config.FormatYAML:
		err = writeYAML(w, reports)
	case config.FormatNDJSON:
		err = writeWalletNDJSON(w, reports)
	default:
		err = writeWalletTables(w, reports, params.All)
	}
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w for %d of %d addresses", ErrWalletAnalysisFailed, failed, len(results))
	}
	return nil
}

// buildWalletReport runs one result through a counterparty engine.
func buildWalletReport(res walletResult, params pagination.Params) (walletReport, error) {
	report := walletReport{Address: res.address, Counterparties: []analytics.Counterparty{}}
	if res.err != nil {
		report.Error = res.err.Error()
		return report, nil
	}

	engine := analytics.NewCounterpartyEngine(params.PageSize)
	engine.Load(res.rows)
	if err := pagination.Apply(engine, params); err != nil {
		return report, err
	}

	if params.All {
		if rows := engine.Filtered(); len(rows) > 0 {
			report.Counterparties = rows
		}
		meta := pagination.SinglePageMeta(len(report.Counterparties))
		report.Pagination = &meta
		return report, nil
	}

	page := engine.VisiblePage()
	if len(page.Items) > 0 {
		report.Counterparties = page.Items
	}
	meta := pagination.NewPaginationMeta(page)
	report.Pagination = &meta
	return report, nil
}

func writeWalletNDJSON(w io.Writer, reports []walletReport) error {
	out := newNDJSONWriter(w)
	for _, report := range reports {
		if report.Error != "" {
			if err := out.Write(walletErrorRow{Wallet: report.Address, Error: report.Error}); err != nil {
				return err
			}
			continue
		}
		for _, c := range report.Counterparties {
			if err := out.Write(walletRow{Wallet: report.Address, Counterparty: c}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeWalletTables(w io.Writer, reports []walletReport, all bool) error {
	for i, report := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Wallet: %s\n", report.Address)

		if report.Error != "" {
			fmt.Fprintf(w, "Failed to analyze wallet: %s\n", report.Error)
			continue
		}
		if report.Pagination.TotalItems == 0 {
			fmt.Fprintln(w, "No counterparties found.")
			continue
		}

		if err := writeCounterpartyTable(w, report.Counterparties); err != nil {
			return err
		}

		meta := report.Pagination
		if all {
			fmt.Fprintf(w, "Showing all %s counterparties\n", analytics.FormatCount(meta.TotalItems))
		} else {
			fmt.Fprintf(w, "Page %d of %d (%s counterparties)\n",
				meta.CurrentPage, meta.TotalPages, analytics.FormatCount(meta.TotalItems))
		}
	}
	return nil
}

func writeCounterpartyTable(w io.Writer, rows []analytics.Counterparty) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, "Address\tLabel\tType\tTxs\tLast Interaction\tLast Tx")
	fmt.Fprintln(tw, "-------\t-----\t----\t---\t----------------\t-------")

	for _, c := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Address,
			c.DisplayLabel(),
			orDash(string(c.Type)),
			analytics.FormatCount(c.TxCount),
			formatLastInteraction(c),
			orDash(analytics.ShortAddress(c.LastTxHash)),
		)
	}
	return tw.Flush()
}

// formatLastInteraction renders a unix-seconds timestamp in UTC, passing
// through values that are not timestamps.
func formatLastInteraction(c analytics.Counterparty) string {
	if t, ok := c.LastInteractionTime(); ok {
		return t.Format(lastInteractionLayout)
	}
	return orDash(c.LastInteraction)
}
