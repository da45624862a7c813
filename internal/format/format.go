// Package format renders project values for display.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Currency formats amount as whole US dollars with thousands grouping, keeping
// up to two fraction digits when present: 4500000 -> "$4,500,000".
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0"
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + printer.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}

// Date formats an ISO date or timestamp as "March 15, 2025". Input that does
// not parse is returned unchanged.
func Date(value string) string {
	s := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return value
}

// Compact abbreviates amount: $4.5M, $950K, $500.
func Compact(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", amount/1_000)
	default:
		return "$" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
}
