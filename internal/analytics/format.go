package analytics

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats amounts with English thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatUSD formats an amount as $1,234.56.
func FormatUSD(amount float64) string {
	if amount < 0 {
		return printer.Sprintf("-$%.2f", -amount)
	}
	return printer.Sprintf("$%.2f", amount)
}

// FormatCount formats an integer with digit grouping.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
