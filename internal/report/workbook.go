package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteWorkbook writes each table to its own sheet, titled after the table.
// Tables should be built with FormatCSV: cells that parse as numbers are
// stored as numbers.
func WriteWorkbook(w io.Writer, tables []Table) error {
	wb := excelize.NewFile()
	defer wb.Close()

	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E4D9"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	defaultSheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	used := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := uniqueSheetName(sheetName(t.Title, i), used)
		if i == 0 {
			if err := wb.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", name, err)
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		if err := writeSheet(wb, name, t, headerStyle); err != nil {
			return err
		}
	}

	if _, err := wb.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(wb *excelize.File, name string, t Table, headerStyle int) error {
	widths := make([]int, len(t.Headers))
	grow := func(col int, s string) {
		for len(widths) <= col {
			widths = append(widths, 0)
		}
		if n := len(s); n > widths[col] {
			widths[col] = n
		}
	}

	header := make([]interface{}, len(t.Headers))
	for j, h := range t.Headers {
		header[j] = h
		grow(j, h)
	}
	if err := wb.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("sheet %s header: %w", name, err)
	}
	if len(header) > 0 {
		if err := wb.SetRowStyle(name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("sheet %s header style: %w", name, err)
		}
	}

	row := 2
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == Separator[0] {
			continue
		}
		values := make([]interface{}, len(r))
		for j, cell := range r {
			values[j] = cellValue(cell)
			grow(j, cell)
		}
		ref, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(name, ref, &values); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, row, err)
		}
		row++
	}

	for j, w := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := wb.SetColWidth(name, col, col, float64(w+2)); err != nil {
			return fmt.Errorf("sheet %s width: %w", name, err)
		}
	}
	return nil
}

// cellValue stores numeric text as a number.
func cellValue(s string) interface{} {
	if s == "" {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.InexactFloat64()
}

// sheetName strips characters Excel rejects and truncates to 31 runes.
func sheetName(title string, i int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, title)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
