package importer

import (
	"fmt"
	"strings"

	"github.com/fundcast/fundcast/internal/model"
)

// LedgerParser parses a long export with one row per month:
//
//	month,inflows,expenses
//	Jan,206953,257913
type LedgerParser struct{}

const (
	ledgerNumFields   = 3
	ledgerColMonth    = 0
	ledgerColInflows  = 1
	ledgerColExpenses = 2
)

// Format returns the parser name.
func (p *LedgerParser) Format() string { return "ledger" }

// ParseRecords reads the export. All twelve months must be present exactly
// once.
func (p *LedgerParser) ParseRecords(records [][]string) (Figures, error) {
	if len(records) <= 1 {
		return Figures{}, fmt.Errorf("ledger has no rows")
	}

	var fig Figures
	seen := make(map[model.Month]bool, model.MonthsPerYear)
	for i, rec := range records[1:] {
		if len(rec) != ledgerNumFields {
			return Figures{}, fmt.Errorf("row %d: want %d fields, got %d", i+2, ledgerNumFields, len(rec))
		}
		m, err := model.ParseMonth(rec[ledgerColMonth])
		if err != nil {
			return Figures{}, fmt.Errorf("row %d: %w", i+2, err)
		}
		if seen[m] {
			return Figures{}, fmt.Errorf("row %d: duplicate month %s", i+2, m)
		}
		seen[m] = true

		if fig.Inflows[m], err = parseAmount(rec[ledgerColInflows]); err != nil {
			return Figures{}, fmt.Errorf("row %d inflows: %w", i+2, err)
		}
		if fig.Expenses[m], err = parseAmount(rec[ledgerColExpenses]); err != nil {
			return Figures{}, fmt.Errorf("row %d expenses: %w", i+2, err)
		}
	}

	var missing []string
	for _, m := range model.Months() {
		if !seen[m] {
			missing = append(missing, m.String())
		}
	}
	if len(missing) > 0 {
		return Figures{}, fmt.Errorf("ledger is missing months %s", strings.Join(missing, ", "))
	}
	return fig, nil
}
