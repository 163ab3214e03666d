// Package report turns engine results into terminal tables or CSV.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/model"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatCurrency rounds to whole dollars with separators.
// e.g., -700380.43 -> "-$700,380"
func FormatCurrency(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return "-$" + FormatNumber(-n)
	}
	return "$" + FormatNumber(n)
}

// FormatDelta is FormatCurrency with an explicit sign.
func FormatDelta(d decimal.Decimal) string {
	if d.Round(0).Sign() > 0 {
		return "+" + FormatCurrency(d)
	}
	return FormatCurrency(d)
}

// FormatPercent formats a value already in percent.
// e.g., -40.7952 -> "-40.80%"
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// FormatShare formats a 0-1 fraction as a percentage.
func FormatShare(f decimal.Decimal) string {
	return f.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// FormatRunway formats months of runway.
func FormatRunway(r model.Runway) string {
	if r.Infinite {
		return "unlimited"
	}
	return fmt.Sprintf("%s mo", r.Months.StringFixed(1))
}
