package tui

// Key strings as reported by tea.KeyMsg.String().
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keySlash    = "/"
	keyLeft     = "left"
	keyRight    = "right"
	keyH        = "h"
	keyL        = "l"
	keyPlus     = "+"
	keyMinus    = "-"
	keyTheme    = "t"
	keyAddress  = "a"
	keyRefresh  = "r"
	keyEditDate = "e"
	keyBars     = "b"
	keySortUSD  = "s"
	keySortDate = "p"
)

// pageSizes are the sizes cycled by + and -.
//
//nolint:gochecknoglobals // Fixed lookup table.
var pageSizes = []int{5, 10, 20, 50}

// nextPageSize returns the size after current in pageSizes, or before it when
// step is negative. Sizes outside the table snap to the nearest entry in the
// direction of travel.
func nextPageSize(current, step int) int {
	if step > 0 {
		for _, s := range pageSizes {
			if s > current {
				return s
			}
		}
		return pageSizes[len(pageSizes)-1]
	}
	for i := len(pageSizes) - 1; i >= 0; i-- {
		if pageSizes[i] < current {
			return pageSizes[i]
		}
	}
	return pageSizes[0]
}
