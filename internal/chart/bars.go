package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/rshade/cypherdash/internal/analytics"
)

const (
	barRune        = "█"
	minBarWidth    = 10
	defaultBarCols = 40
)

// RenderBars draws one text bar per point, scaled so the largest value spans
// width cells. Each line reads "<label> <bar> <usd>".
func RenderBars(points []analytics.VolumePoint, width int) string {
	if len(points) == 0 {
		return ""
	}
	if width < minBarWidth {
		width = defaultBarCols
	}

	labelWidth := 0
	maxUSD := 0.0
	for _, p := range points {
		labelWidth = max(labelWidth, len(p.PeriodLabel))
		maxUSD = math.Max(maxUSD, p.USD)
	}

	var b strings.Builder
	for _, p := range points {
		cells := 0
		if maxUSD > 0 && p.USD > 0 {
			cells = max(1, int(math.Round(p.USD/maxUSD*float64(width))))
		}
		fmt.Fprintf(&b, "%-*s %s%s %s\n",
			labelWidth, p.PeriodLabel,
			strings.Repeat(barRune, cells), strings.Repeat(" ", width-cells),
			analytics.FormatUSD(p.USD))
	}
	return b.String()
}
