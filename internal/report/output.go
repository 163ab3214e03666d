package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/model"
)

// Format selects how tables are written.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// ParseFormat validates an output format name. Empty means FormatTable.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown format %q (want table or csv)", s)
}

// Money formats currency: rounded and separated for tables, exact for CSV.
func (f Format) Money(d decimal.Decimal) string {
	if f == FormatCSV {
		return d.StringFixed(2)
	}
	return FormatCurrency(d)
}

// Delta formats a signed change in currency.
func (f Format) Delta(d decimal.Decimal) string {
	if f == FormatCSV {
		return d.StringFixed(2)
	}
	return FormatDelta(d)
}

// Percent formats a value already in percent.
func (f Format) Percent(pct decimal.Decimal) string {
	if f == FormatCSV {
		return pct.StringFixed(4)
	}
	return FormatPercent(pct)
}

// Share formats a 0-1 fraction.
func (f Format) Share(s decimal.Decimal) string {
	if f == FormatCSV {
		return s.StringFixed(4)
	}
	return FormatShare(s)
}

// Runway formats months of runway. CSV writes "inf" for the sentinel.
func (f Format) Runway(r model.Runway) string {
	if f == FormatCSV {
		return r.String()
	}
	return FormatRunway(r)
}

// Write renders t as a bordered table or as CSV with a header row. Separator
// rows are skipped in CSV.
func Write(w io.Writer, f Format, t Table) error {
	if f != FormatCSV {
		_, err := io.WriteString(w, RenderTable(t))
		return err
	}

	cw := csv.NewWriter(w)
	if len(t.Headers) > 0 {
		if err := cw.Write(t.Headers); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, row := range t.Rows {
		if len(row) == 1 && row[0] == Separator[0] {
			continue
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
