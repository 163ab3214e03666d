package budget

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fundcast/fundcast/internal/model"
)

// Format is a budget file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported budget file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// File is the on-disk shape of a budget. Month-keyed maps use three-letter
// month names.
type File struct {
	Name            string                     `yaml:"name" toml:"name"`
	FiscalYear      int                        `yaml:"fiscal_year" toml:"fiscal_year"`
	OpeningBalance  decimal.Decimal            `yaml:"opening_balance" toml:"opening_balance"`
	ExchangeRate    decimal.Decimal            `yaml:"exchange_rate" toml:"exchange_rate"`
	MonthlyInflows  map[string]decimal.Decimal `yaml:"monthly_inflows" toml:"monthly_inflows"`
	MonthlyExpenses map[string]decimal.Decimal `yaml:"monthly_expenses" toml:"monthly_expenses"`
	Grants          map[string]GrantFile       `yaml:"grants,omitempty" toml:"grants,omitempty"`
	PartnerRevenue  map[string]PartnerFile     `yaml:"partner_revenue,omitempty" toml:"partner_revenue,omitempty"`
	RentalIncome    map[string]RentalFile      `yaml:"rental_income,omitempty" toml:"rental_income,omitempty"`
	UnitEconomics   map[string]ProgramFile     `yaml:"unit_economics,omitempty" toml:"unit_economics,omitempty"`
	Reported        ReportedFile               `yaml:"reported" toml:"reported"`
}

// GrantFile is one grant entry.
type GrantFile struct {
	Amount decimal.Decimal            `yaml:"amount" toml:"amount"`
	Timing map[string]decimal.Decimal `yaml:"timing" toml:"timing"`
	Notes  string                     `yaml:"notes,omitempty" toml:"notes,omitempty"`
}

// PartnerFile is one partner revenue stream.
type PartnerFile struct {
	MonthlyAmount decimal.Decimal `yaml:"monthly_amount" toml:"monthly_amount"`
	StartMonth    string          `yaml:"start_month,omitempty" toml:"start_month,omitempty"`
	EndMonth      string          `yaml:"end_month,omitempty" toml:"end_month,omitempty"`
	Schools       int             `yaml:"schools,omitempty" toml:"schools,omitempty"`
	Students      int             `yaml:"students,omitempty" toml:"students,omitempty"`
	Notes         string          `yaml:"notes,omitempty" toml:"notes,omitempty"`
}

// RentalFile is one rental income stream.
type RentalFile struct {
	AnnualAmount decimal.Decimal            `yaml:"annual_amount" toml:"annual_amount"`
	Timing       map[string]decimal.Decimal `yaml:"timing" toml:"timing"`
}

// ProgramFile is the unit economics of one program.
type ProgramFile struct {
	Students     int             `yaml:"students" toml:"students"`
	CostPerChild decimal.Decimal `yaml:"cost_per_child" toml:"cost_per_child"`
}

// ReportedFile holds the hand-entered sheet totals.
type ReportedFile struct {
	TotalInflows     decimal.Decimal `yaml:"total_inflows" toml:"total_inflows"`
	TotalExpenses    decimal.Decimal `yaml:"total_expenses" toml:"total_expenses"`
	ProjectedSurplus decimal.Decimal `yaml:"projected_surplus" toml:"projected_surplus"`
	TotalGrantIncome decimal.Decimal `yaml:"total_grant_income" toml:"total_grant_income"`
}

// Load reads a budget file from disk and converts it to a Budget.
func Load(path string) (*model.Budget, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening budget: %w", err)
	}
	defer f.Close()

	b, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("reading budget %s: %w", path, err)
	}
	return b, nil
}

// Save writes a Budget to disk in the format implied by the extension.
func Save(path string, b *model.Budget) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, format, b); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing budget: %w", err)
	}
	return nil
}

// Read decodes a budget in the given format.
func Read(r io.Reader, format Format) (*model.Budget, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading budget data: %w", err)
	}

	var bf File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &bf); err != nil {
			return nil, fmt.Errorf("parsing budget YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &bf); err != nil {
			return nil, fmt.Errorf("parsing budget TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown budget format %q", format)
	}
	return bf.ToModel()
}

// Write encodes a budget in the given format.
func Write(w io.Writer, format Format, b *model.Budget) error {
	bf := FromModel(b)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bf); err != nil {
			return fmt.Errorf("marshaling budget YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(bf); err != nil {
			return fmt.Errorf("marshaling budget TOML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown budget format %q", format)
	}
}

// ToModel converts the file shape to a Budget. Month keys are checked
// strictly: a misspelled month is an error, not a silently dropped amount.
func (bf File) ToModel() (*model.Budget, error) {
	inflows, err := model.MonthlyFromMapStrict(bf.MonthlyInflows)
	if err != nil {
		return nil, fmt.Errorf("monthly_inflows: %w", err)
	}
	expenses, err := model.MonthlyFromMapStrict(bf.MonthlyExpenses)
	if err != nil {
		return nil, fmt.Errorf("monthly_expenses: %w", err)
	}

	b := &model.Budget{
		Name:            bf.Name,
		FiscalYear:      bf.FiscalYear,
		OpeningBalance:  bf.OpeningBalance,
		ExchangeRate:    bf.ExchangeRate,
		MonthlyInflows:  inflows,
		MonthlyExpenses: expenses,
		Grants:          make(map[string]model.Grant, len(bf.Grants)),
		PartnerRevenue:  make(map[string]model.PartnerStream, len(bf.PartnerRevenue)),
		RentalIncome:    make(map[string]model.Rental, len(bf.RentalIncome)),
		UnitEconomics:   make(map[string]model.Program, len(bf.UnitEconomics)),
		Reported: model.ReportedTotals{
			TotalInflows:     bf.Reported.TotalInflows,
			TotalExpenses:    bf.Reported.TotalExpenses,
			ProjectedSurplus: bf.Reported.ProjectedSurplus,
			TotalGrantIncome: bf.Reported.TotalGrantIncome,
		},
	}

	for id, g := range bf.Grants {
		t, err := model.MonthlyFromMapStrict(g.Timing)
		if err != nil {
			return nil, fmt.Errorf("grant %s timing: %w", id, err)
		}
		b.Grants[id] = model.Grant{Amount: g.Amount, Timing: t, Notes: g.Notes}
	}

	for id, p := range bf.PartnerRevenue {
		stream := model.PartnerStream{
			MonthlyAmount: p.MonthlyAmount,
			Schools:       p.Schools,
			Students:      p.Students,
			Notes:         p.Notes,
		}
		if p.StartMonth != "" {
			m, err := model.ParseMonth(p.StartMonth)
			if err != nil {
				return nil, fmt.Errorf("partner %s start_month: %w", id, err)
			}
			stream.Start = &m
		}
		if p.EndMonth != "" {
			m, err := model.ParseMonth(p.EndMonth)
			if err != nil {
				return nil, fmt.Errorf("partner %s end_month: %w", id, err)
			}
			stream.End = &m
		}
		b.PartnerRevenue[id] = stream
	}

	for id, r := range bf.RentalIncome {
		t, err := model.MonthlyFromMapStrict(r.Timing)
		if err != nil {
			return nil, fmt.Errorf("rental %s timing: %w", id, err)
		}
		b.RentalIncome[id] = model.Rental{AnnualAmount: r.AnnualAmount, Timing: t}
	}

	for id, p := range bf.UnitEconomics {
		b.UnitEconomics[id] = model.Program{Students: p.Students, CostPerChild: p.CostPerChild}
	}

	return b, nil
}

// FromModel converts a Budget to its file shape. Timing maps only carry the
// months with a non-zero amount.
func FromModel(b *model.Budget) File {
	bf := File{
		Name:            b.Name,
		FiscalYear:      b.FiscalYear,
		OpeningBalance:  b.OpeningBalance,
		ExchangeRate:    b.ExchangeRate,
		MonthlyInflows:  b.MonthlyInflows.Map(),
		MonthlyExpenses: b.MonthlyExpenses.Map(),
		Reported: ReportedFile{
			TotalInflows:     b.Reported.TotalInflows,
			TotalExpenses:    b.Reported.TotalExpenses,
			ProjectedSurplus: b.Reported.ProjectedSurplus,
			TotalGrantIncome: b.Reported.TotalGrantIncome,
		},
	}

	if len(b.Grants) > 0 {
		bf.Grants = make(map[string]GrantFile, len(b.Grants))
		for id, g := range b.Grants {
			bf.Grants[id] = GrantFile{Amount: g.Amount, Timing: sparse(g.Timing), Notes: g.Notes}
		}
	}
	if len(b.PartnerRevenue) > 0 {
		bf.PartnerRevenue = make(map[string]PartnerFile, len(b.PartnerRevenue))
		for id, p := range b.PartnerRevenue {
			pf := PartnerFile{
				MonthlyAmount: p.MonthlyAmount,
				Schools:       p.Schools,
				Students:      p.Students,
				Notes:         p.Notes,
			}
			if p.Start != nil {
				pf.StartMonth = p.Start.String()
			}
			if p.End != nil {
				pf.EndMonth = p.End.String()
			}
			bf.PartnerRevenue[id] = pf
		}
	}
	if len(b.RentalIncome) > 0 {
		bf.RentalIncome = make(map[string]RentalFile, len(b.RentalIncome))
		for id, r := range b.RentalIncome {
			bf.RentalIncome[id] = RentalFile{AnnualAmount: r.AnnualAmount, Timing: sparse(r.Timing)}
		}
	}
	if len(b.UnitEconomics) > 0 {
		bf.UnitEconomics = make(map[string]ProgramFile, len(b.UnitEconomics))
		for id, p := range b.UnitEconomics {
			bf.UnitEconomics[id] = ProgramFile{Students: p.Students, CostPerChild: p.CostPerChild}
		}
	}
	return bf
}

func sparse(mv model.Monthly) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, m := range model.Months() {
		if !mv[m].IsZero() {
			out[m.String()] = mv[m]
		}
	}
	return out
}

// sortedKeys is used where output order must be stable.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
