package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads an XLSX export and hands the rows of its first sheet
// to p. Blank rows are dropped, as encoding/csv does. Rows are padded to the
// header width since trailing blank cells are not stored.
func ParseWorkbook(p Parser, r io.Reader) (Figures, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return Figures{}, fmt.Errorf("opening %s workbook: %w", p.Format(), err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return Figures{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return Figures{}, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	var records [][]string
	width := 0
	for _, row := range rows {
		blank := true
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
			if row[j] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if records == nil {
			width = len(row)
		}
		for len(row) < width {
			row = append(row, "")
		}
		records = append(records, row)
	}
	return p.ParseRecords(records)
}
