package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Month is a calendar month of the fiscal year. The zero value is January.
type Month int

const (
	Jan Month = iota
	Feb
	Mar
	Apr
	May
	Jun
	Jul
	Aug
	Sep
	Oct
	Nov
	Dec
)

// MonthsPerYear is the number of months in every forecast.
const MonthsPerYear = 12

var monthNames = [MonthsPerYear]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var fullMonthNames = [MonthsPerYear]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// Months returns all months in canonical order.
func Months() []Month {
	ms := make([]Month, MonthsPerYear)
	for i := range ms {
		ms[i] = Month(i)
	}
	return ms
}

// String returns the three-letter month name.
func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m]
}

// Valid reports whether m is one of Jan..Dec.
func (m Month) Valid() bool {
	return m >= Jan && m <= Dec
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid month %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMonth accepts "Jan", "jan", "JANUARY" and the like.
func ParseMonth(s string) (Month, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range monthNames {
		if key == strings.ToLower(name) || key == fullMonthNames[i] {
			return Month(i), nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

// Monthly holds one amount per month, indexed by Month.
type Monthly [MonthsPerYear]decimal.Decimal

// Get returns the amount for m, or zero when m is not a valid month.
func (mv Monthly) Get(m Month) decimal.Decimal {
	if !m.Valid() {
		return decimal.Zero
	}
	return mv[m]
}

// Sum returns the total across all twelve months.
func (mv Monthly) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range mv {
		total = total.Add(v)
	}
	return total
}

// Scale multiplies every month by factor.
func (mv Monthly) Scale(factor decimal.Decimal) Monthly {
	var out Monthly
	for i, v := range mv {
		out[i] = v.Mul(factor)
	}
	return out
}

// Map converts to a month-name keyed map, the shape used in budget files.
func (mv Monthly) Map() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, MonthsPerYear)
	for i, v := range mv {
		out[monthNames[i]] = v
	}
	return out
}

// MonthlyFromMap converts a month-name keyed map. Missing months are zero and
// keys that are not month names are ignored.
func MonthlyFromMap(values map[string]decimal.Decimal) Monthly {
	var out Monthly
	for k, v := range values {
		m, err := ParseMonth(k)
		if err != nil {
			continue
		}
		out[m] = out[m].Add(v)
	}
	return out
}

// MonthlyFromMapStrict is like MonthlyFromMap but rejects unknown keys.
func MonthlyFromMapStrict(values map[string]decimal.Decimal) (Monthly, error) {
	var out Monthly
	var bad []string
	for k, v := range values {
		m, err := ParseMonth(k)
		if err != nil {
			bad = append(bad, k)
			continue
		}
		out[m] = out[m].Add(v)
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return Monthly{}, fmt.Errorf("unknown month keys: %s", strings.Join(bad, ", "))
	}
	return out, nil
}
