// Package importer refreshes a budget's monthly figures from spreadsheet
// exports in CSV or XLSX form.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/model"
)

// Figures are the monthly totals read from an export.
type Figures struct {
	Inflows  model.Monthly
	Expenses model.Monthly
}

// Apply returns a copy of b with its monthly inflows and expenses replaced.
// Grants, partner streams and reported totals are shared with b.
func (f Figures) Apply(b *model.Budget) *model.Budget {
	out := *b
	out.MonthlyInflows = f.Inflows
	out.MonthlyExpenses = f.Expenses
	return &out
}

// Parser converts the rows of a spreadsheet export into monthly Figures.
type Parser interface {
	ParseRecords(records [][]string) (Figures, error)
	Format() string
}

// ParseCSV reads a CSV export and hands its rows to p.
func ParseCSV(p Parser, r io.Reader) (Figures, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return Figures{}, fmt.Errorf("reading %s CSV: %w", p.Format(), err)
	}
	return p.ParseRecords(records)
}

// ParseFile parses a .csv or .xlsx export.
func ParseFile(p Parser, path string) (Figures, error) {
	f, err := os.Open(path)
	if err != nil {
		return Figures{}, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ParseWorkbook(p, f)
	default:
		return ParseCSV(p, f)
	}
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes an export file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&SheetParser{})
	r.Register(&LedgerParser{})
	return r
}

// importDir is the subdirectory for exports waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported exports.
const processedDir = "import/processed"

// Scan returns CSV and XLSX files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// parseAmount accepts spreadsheet-formatted numbers: "$1,234.50",
// "(1,000)" for negatives, and blank for zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
