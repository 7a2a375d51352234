package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/chart"
	"github.com/rshade/cypherdash/internal/cli/pagination"
	"github.com/rshade/cypherdash/internal/config"
	"github.com/rshade/cypherdash/internal/resultset"
)

const (
	flagFrom        = "from"
	flagTo          = "to"
	flagGranularity = "granularity"

	// volumeBarWidth is the bar column width used by --bars.
	volumeBarWidth = 50
)

// ErrChartGranularity is returned when a chart is asked for more than one series.
var ErrChartGranularity = errors.New("volume chart needs a single granularity: daily, weekly or monthly")

//nolint:gochecknoglobals // Fixed list of formats.
var volumeFormats = []string{config.FormatTable, config.FormatJSON, config.FormatYAML}

// volumeFlags are the date range and series selection shared by the volume commands.
type volumeFlags struct {
	from        string
	to          string
	granularity string
}

func (f *volumeFlags) bind(cmd *cobra.Command, defaultGranularity analytics.Granularity) {
	f.granularity = string(defaultGranularity)
	cmd.Flags().StringVar(&f.from, flagFrom, analytics.DefaultFromDate, "Start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&f.to, flagTo, analytics.DefaultToDate, "End date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&f.granularity, flagGranularity, f.granularity,
		"Series to show: daily, weekly, monthly or all")
}

// parse validates the flags into a query and a granularity.
func (f *volumeFlags) parse() (analytics.VolumeQuery, analytics.Granularity, error) {
	query, err := analytics.NewVolumeQuery(f.from, f.to)
	if err != nil {
		return analytics.VolumeQuery{}, "", err
	}
	granularity, err := analytics.ParseGranularity(f.granularity)
	if err != nil {
		return analytics.VolumeQuery{}, "", err
	}
	return query, granularity, nil
}

// volumeSeries is the JSON/YAML shape of one series.
type volumeSeries struct {
	Granularity analytics.Granularity   `json:"granularity" yaml:"granularity"`
	Points      []analytics.VolumePoint `json:"points"      yaml:"points"`
	TotalUSD    float64                 `json:"total_usd"   yaml:"total_usd"`
}

// volumeOutput is the JSON/YAML document printed by "volume show".
type volumeOutput struct {
	From   string         `json:"from"   yaml:"from"`
	To     string         `json:"to"     yaml:"to"`
	Series []volumeSeries `json:"series" yaml:"series"`
}

// NewVolumeShowCmd creates the "volume show" command.
func NewVolumeShowCmd() *cobra.Command {
	var (
		flags   volumeFlags
		output  string
		sortBy  string
		showBar bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print trading volume per period",
		Long: `Fetches the trading volume between --from and --to and prints the daily,
weekly and monthly series (or the one selected with --granularity) with their
totals. --bars draws each series as horizontal bars scaled to its largest period.`,
		Example: `  # Every series for the default range
  cypherdash volume show

  # Monthly volume for Q1, biggest months first, with bars
  cypherdash volume show --from 2025-01-01 --to 2025-03-31 --granularity monthly --sort usd:desc --bars

  # Weekly volume as JSON
  cypherdash volume show --granularity weekly --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, granularity, err := flags.parse()
			if err != nil {
				return err
			}
			format, err := resolveFormat(cmd, output, volumeFormats)
			if err != nil {
				return err
			}
			// Validated up front so a bad --sort fails before the fetch.
			if _, err = sortVolume(nil, sortBy); err != nil {
				return err
			}

			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				report, fetchErr := s.volume(ctx, query)
				if fetchErr != nil {
					return fmt.Errorf("loading volume: %w", fetchErr)
				}

				doc := volumeOutput{From: query.FromDate(), To: query.ToDate()}
				for _, g := range granularity.Expand() {
					points, sortErr := sortVolume(report.Series(g), sortBy)
					if sortErr != nil {
						return sortErr
					}
					doc.Series = append(doc.Series, volumeSeries{
						Granularity: g,
						Points:      points,
						TotalUSD:    report.Total(g),
					})
				}

				w := cmd.OutOrStdout()
				switch format {
				case config.FormatJSON:
					return writeJSON(w, doc)
				case config.FormatYAML:
					return writeYAML(w, doc)
				default:
					return writeVolumeTables(w, doc, showBar)
				}
			})
		},
	}

	flags.bind(cmd, analytics.AllGranularities)
	cmd.Flags().StringVarP(&output, flagOutput, "o", config.DefaultOutputFormat,
		"Output format: table, json, yaml (default from config)")
	cmd.Flags().StringVar(&sortBy, pagination.FlagSort, "",
		fmt.Sprintf("Sort expression field[:asc|desc] (fields: %v); default is backend order",
			analytics.VolumePointSchema.SortedFieldNames()))
	cmd.Flags().BoolVar(&showBar, "bars", false, "Draw each series as terminal bars")

	return cmd
}

// sortVolume orders points by a --sort expression through a volume engine.
// An empty expression keeps the backend's period order.
func sortVolume(points []analytics.VolumePoint, expr string) ([]analytics.VolumePoint, error) {
	if points == nil {
		points = []analytics.VolumePoint{}
	}
	if expr == "" {
		return points, nil
	}

	engine := analytics.NewVolumeEngine(resultset.DefaultPageSize)
	engine.Load(points)
	if err := pagination.ApplySort(engine, expr); err != nil {
		return nil, err
	}
	if sorted := engine.Filtered(); len(sorted) > 0 {
		return sorted, nil
	}
	return points, nil
}

func writeVolumeTables(w io.Writer, doc volumeOutput, bars bool) error {
	fmt.Fprintf(w, "Trading volume %s to %s\n", doc.From, doc.To)

	for _, series := range doc.Series {
		fmt.Fprintln(w)
		fmt.Fprintln(w, series.Granularity.Title())

		if len(series.Points) == 0 {
			fmt.Fprintln(w, "No volume data for this range.")
			continue
		}

		if bars {
			fmt.Fprint(w, chart.RenderBars(series.Points, volumeBarWidth))
		} else {
			tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Period\tVolume (USD)\t")
			fmt.Fprintln(tw, "------\t------------\t")
			for _, p := range series.Points {
				fmt.Fprintf(tw, "%s\t%s\t\n", p.PeriodLabel, analytics.FormatUSD(p.USD))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "Total: %s\n", analytics.FormatUSD(series.TotalUSD))
	}
	return nil
}

// NewVolumeChartCmd creates the "volume chart" command.
func NewVolumeChartCmd() *cobra.Command {
	var (
		flags  volumeFlags
		out    string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render one volume series as a PNG bar chart",
		Example: `  # Monthly volume for the default range
  cypherdash volume chart --out monthly.png

  # Daily volume for March at a larger size
  cypherdash volume chart --granularity daily --from 2025-03-01 --to 2025-03-31 \
    --width 1600 --height 600 --out march.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, granularity, err := flags.parse()
			if err != nil {
				return err
			}
			if granularity == analytics.AllGranularities {
				return ErrChartGranularity
			}
			return runWithSession(cmd, func(ctx context.Context, s *session) error {
				report, fetchErr := s.volume(ctx, query)
				if fetchErr != nil {
					return fmt.Errorf("loading volume: %w", fetchErr)
				}

				title := fmt.Sprintf("%s (%s to %s)", granularity.Title(), query.FromDate(), query.ToDate())
				if renderErr := writeChartFile(out, title, report.Series(granularity),
					chart.Options{Width: width, Height: height}); renderErr != nil {
					return renderErr
				}

				logger.Info().Ctx(ctx).Str("path", out).Str("granularity", string(granularity)).
					Msg("volume chart written")
				cmd.Printf("Chart written to %s\n", out)
				return nil
			})
		},
	}

	flags.bind(cmd, analytics.Monthly)
	cmd.Flags().StringVar(&out, "out", "", "PNG file to write (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().IntVar(&width, "width", chart.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", chart.DefaultHeight, "Image height in pixels")

	return cmd
}

// writeChartFile renders into a temporary file next to path and renames it
// into place, so a failed render never leaves a truncated PNG behind.
func writeChartFile(path, title string, points []analytics.VolumePoint, opts chart.Options) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cypherdash-chart-*.png")
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	tmpName := tmp.Name()

	renderErr := chart.RenderPNG(tmp, title, points, opts)
	closeErr := tmp.Close()
	if err = errors.Join(renderErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rendering chart: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing chart file: %w", err)
	}
	return nil
}
