package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rshade/cypherdash/internal/resultset"
)

// DateLayout is the ISO 8601 calendar date format used by the volume endpoint.
const DateLayout = "2006-01-02"

// Dashboard default date range.
const (
	DefaultFromDate = "2025-01-01"
	DefaultToDate   = "2025-12-31"
)

// Volume errors.
var (
	ErrInvalidDateRange   = errors.New("from date must not be after to date")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidGranularity = errors.New("granularity must be one of daily, weekly, monthly, all")
)

// Granularity selects one of the volume series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	// AllGranularities selects every series, in daily, weekly, monthly order.
	AllGranularities Granularity = "all"
)

// Granularities lists the concrete series in display order.
func Granularities() []Granularity {
	return []Granularity{Daily, Weekly, Monthly}
}

// ParseGranularity parses a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Daily, Weekly, Monthly, AllGranularities:
		return g, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidGranularity, s)
	}
}

// Expand returns the concrete granularities g stands for.
func (g Granularity) Expand() []Granularity {
	if g == AllGranularities {
		return Granularities()
	}
	return []Granularity{g}
}

// Title returns the heading used for the series, e.g. "Daily Volume".
func (g Granularity) Title() string {
	if g == "" {
		return "Volume"
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:]) + " Volume"
}

// VolumePoint is the USD volume of one period.
type VolumePoint struct {
	PeriodLabel string  `json:"period_label" yaml:"period_label"`
	USD         float64 `json:"usd"          yaml:"usd"`
}

// UnmarshalJSON accepts the period label under period_label, date, week or month.
func (p *VolumePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		PeriodLabel string  `json:"period_label"`
		Date        string  `json:"date"`
		Week        string  `json:"week"`
		Month       string  `json:"month"`
		USD         float64 `json:"usd"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.USD = raw.USD
	for _, label := range []string{raw.PeriodLabel, raw.Date, raw.Week, raw.Month} {
		if label != "" {
			p.PeriodLabel = label
			break
		}
	}
	return nil
}

// Volume table field names.
const (
	FieldPeriodLabel = "period_label"
	FieldUSD         = "usd"
)

// VolumePointSchema declares the sortable fields of a volume period table.
//
//nolint:gochecknoglobals // Immutable schema shared by every volume view.
var VolumePointSchema = resultset.MustSchema(FieldPeriodLabel,
	resultset.TextField(FieldPeriodLabel, func(p VolumePoint) string { return p.PeriodLabel }),
	resultset.NumericField(FieldUSD, func(p VolumePoint) float64 { return p.USD }),
)

// NewVolumeEngine creates a result-set engine over volume points. Points keep
// their backend (chronological) order until a sort is chosen.
func NewVolumeEngine(pageSize int) *resultset.Engine[VolumePoint] {
	return resultset.NewEngine(VolumePointSchema, resultset.WithPageSize(pageSize))
}

// VolumeReport holds the three volume series for a date range.
type VolumeReport struct {
	Daily   []VolumePoint `json:"daily"   yaml:"daily"`
	Weekly  []VolumePoint `json:"weekly"  yaml:"weekly"`
	Monthly []VolumePoint `json:"monthly" yaml:"monthly"`
}

// Series returns the points of one granularity.
func (r VolumeReport) Series(g Granularity) []VolumePoint {
	switch g {
	case Daily:
		return r.Daily
	case Weekly:
		return r.Weekly
	case Monthly:
		return r.Monthly
	default:
		return nil
	}
}

// Total sums the USD volume of one granularity.
func (r VolumeReport) Total(g Granularity) float64 {
	var total float64
	for _, p := range r.Series(g) {
		total += p.USD
	}
	return total
}

// IsEmpty reports whether every series is empty.
func (r VolumeReport) IsEmpty() bool {
	return len(r.Daily) == 0 && len(r.Weekly) == 0 && len(r.Monthly) == 0
}

// VolumeQuery is an inclusive calendar date range.
type VolumeQuery struct {
	From time.Time
	To   time.Time
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// NewVolumeQuery parses and validates a date range.
func NewVolumeQuery(from, to string) (VolumeQuery, error) {
	f, err := ParseDate(from)
	if err != nil {
		return VolumeQuery{}, fmt.Errorf("from date: %w", err)
	}
	t, err := ParseDate(to)
	if err != nil {
		return VolumeQuery{}, fmt.Errorf("to date: %w", err)
	}
	q := VolumeQuery{From: f, To: t}
	if err = q.Validate(); err != nil {
		return VolumeQuery{}, err
	}
	return q, nil
}

// DefaultVolumeQuery returns the dashboard's default range.
func DefaultVolumeQuery() VolumeQuery {
	q, _ := NewVolumeQuery(DefaultFromDate, DefaultToDate)
	return q
}

// Validate checks From <= To.
func (q VolumeQuery) Validate() error {
	if q.From.After(q.To) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, q.FromDate(), q.ToDate())
	}
	return nil
}

// FromDate formats From as YYYY-MM-DD.
func (q VolumeQuery) FromDate() string {
	return q.From.Format(DateLayout)
}

// ToDate formats To as YYYY-MM-DD.
func (q VolumeQuery) ToDate() string {
	return q.To.Format(DateLayout)
}

// Key identifies the query for last-request-wins bookkeeping.
func (q VolumeQuery) Key() string {
	return q.FromDate() + ".." + q.ToDate()
}
