package importer

import (
	"fmt"
	"strings"

	"github.com/fundcast/fundcast/internal/model"
)

// SheetParser parses the wide budget sheet: a Category column followed by
// one column per month, with one row for revenue and one for expenses.
//
//	Category,Jan,Feb,...,Dec
//	Revenue,206953,945846,...
//	Expenses,257913,222948,...
type SheetParser struct{}

// Format returns the parser name.
func (p *SheetParser) Format() string { return "sheet" }

// ParseRecords reads the sheet. Rows other than revenue and expenses are
// ignored.
func (p *SheetParser) ParseRecords(records [][]string) (Figures, error) {
	if len(records) == 0 {
		return Figures{}, fmt.Errorf("sheet is empty")
	}

	cols, err := monthColumns(records[0])
	if err != nil {
		return Figures{}, err
	}

	var fig Figures
	var haveIn, haveOut bool
	for i, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		var target *model.Monthly
		switch category(rec[0]) {
		case "inflows":
			if haveIn {
				return Figures{}, fmt.Errorf("row %d: duplicate revenue row", i+2)
			}
			target, haveIn = &fig.Inflows, true
		case "expenses":
			if haveOut {
				return Figures{}, fmt.Errorf("row %d: duplicate expenses row", i+2)
			}
			target, haveOut = &fig.Expenses, true
		default:
			continue
		}
		for m, col := range cols {
			if col >= len(rec) {
				continue
			}
			amt, err := parseAmount(rec[col])
			if err != nil {
				return Figures{}, fmt.Errorf("row %d %s: %w", i+2, m, err)
			}
			target[m] = amt
		}
	}

	if !haveIn || !haveOut {
		return Figures{}, fmt.Errorf("sheet needs both a revenue row and an expenses row")
	}
	return fig, nil
}

// monthColumns maps each month to its column in the header row. Every month
// must appear exactly once.
func monthColumns(header []string) (map[model.Month]int, error) {
	cols := make(map[model.Month]int, model.MonthsPerYear)
	for i, h := range header {
		if i == 0 {
			continue
		}
		m, err := model.ParseMonth(h)
		if err != nil {
			continue
		}
		if _, dup := cols[m]; dup {
			return nil, fmt.Errorf("header: month %s appears twice", m)
		}
		cols[m] = i
	}
	var missing []string
	for _, m := range model.Months() {
		if _, ok := cols[m]; !ok {
			missing = append(missing, m.String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header: missing months %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// category normalizes a row label to "inflows", "expenses" or "".
func category(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.TrimPrefix(l, "total ")
	switch l {
	case "revenue", "inflows", "inflow", "income":
		return "inflows"
	case "expenses", "expense", "outflows", "outflow":
		return "expenses"
	}
	return ""
}
