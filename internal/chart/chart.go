// Package chart renders volume series as PNG bar charts and terminal bars.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/rshade/cypherdash/internal/analytics"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no volume data to chart")

// PNG layout.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
	maxXLabels    = 24
	barSpacing    = 4
)

// Options sizes the PNG. Zero values use the defaults.
type Options struct {
	Width  int
	Height int
}

// RenderPNG draws points as a bar chart titled title and writes the PNG to w.
func RenderPNG(w io.Writer, title string, points []analytics.VolumePoint, opts Options) error {
	if len(points) == 0 {
		return ErrNoData
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	labelEvery := int(math.Ceil(float64(len(points)) / maxXLabels))
	bars := make([]gochart.Value, len(points))
	maxUSD := 0.0
	for i, p := range points {
		label := p.PeriodLabel
		if i%labelEvery != 0 {
			label = ""
		}
		bars[i] = gochart.Value{Label: label, Value: p.USD}
		maxUSD = math.Max(maxUSD, p.USD)
	}
	// An all-zero series would otherwise collapse the y range.
	if maxUSD <= 0 {
		maxUSD = 1
	}

	graph := gochart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: maxUSD * 1.05},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return analytics.FormatUSD(f)
				}
				return fmt.Sprint(v)
			},
		},
		Bars: bars,
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("rendering %q chart: %w", title, err)
	}
	return nil
}
