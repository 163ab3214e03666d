package budget

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundcast/fundcast/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDefault_GrantTimingSumsToAmount(t *testing.T) {
	b := Default(2026)
	require.NotEmpty(t, b.Grants)
	for id, g := range b.Grants {
		assert.True(t, g.Timing.Sum().Equal(g.Amount), "grant %s: timing %s != amount %s", id, g.Timing.Sum(), g.Amount)
	}
	assert.Empty(t, Validate(b))
}

func TestDefault_Figures(t *testing.T) {
	b := Default(2026)
	assert.True(t, b.OpeningBalance.Equal(dec("723248")))
	assert.True(t, b.MonthlyInflows.Sum().Equal(dec("3101283")))
	assert.True(t, b.MonthlyExpenses.Sum().Equal(dec("2559354")))
	assert.True(t, b.TotalGrantIncome().Equal(dec("2938535")))

	mulago := b.Grants["mulago"]
	assert.True(t, mulago.Amount.Equal(dec("950000")))
	assert.Equal(t, []model.Month{model.Apr, model.Nov}, mulago.DisbursementMonths())

	// Unknown years fall back to the shipped budget.
	assert.Equal(t, 2026, Default(1999).FiscalYear)
}

func TestValidate(t *testing.T) {
	b := Default(2026)
	b.Grants["Bad Grant"] = model.Grant{Amount: dec("100")}
	g := b.Grants["mulago"]
	g.Amount = dec("900000")
	b.Grants["mulago"] = g
	b.MonthlyExpenses[model.Mar] = dec("-1")
	start, end := model.Dec, model.Jan
	b.PartnerRevenue["late"] = model.PartnerStream{MonthlyAmount: dec("1"), Start: &start, End: &end}
	b.ExchangeRate = decimal.Zero

	errs := Validate(b)
	byInvariant := make(map[int][]ValidationError)
	for _, e := range errs {
		byInvariant[e.Invariant] = append(byInvariant[e.Invariant], e)
	}

	require.Len(t, byInvariant[1], 2, "mulago and Bad Grant timing mismatch")
	assert.Equal(t, "grant Bad Grant", byInvariant[1][0].Subject)
	assert.Equal(t, "grant mulago", byInvariant[1][1].Subject)
	require.Len(t, byInvariant[2], 1)
	assert.Contains(t, byInvariant[2][0].Error(), `want "bad_grant"`)
	require.Len(t, byInvariant[3], 1)
	assert.Equal(t, "expense Mar", byInvariant[3][0].Subject)
	require.Len(t, byInvariant[4], 1)
	require.Len(t, byInvariant[5], 1)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "mulago", NormalizeID("Mulago"))
	assert.Equal(t, "niete_ict", NormalizeID(" Niete ICT "))
}

func TestService_Grant(t *testing.T) {
	svc := NewService(Default(2026))

	id, g, err := svc.Grant("Mulago")
	require.NoError(t, err)
	assert.Equal(t, "mulago", id)
	assert.True(t, g.Amount.Equal(dec("950000")))
	assert.True(t, svc.Exists("Niete ICT"))

	_, _, err = svc.Grant("rippleworks")
	require.Error(t, err)
	var nf *GrantNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "rippleworks", nf.ID)
	assert.Equal(t, svc.Grants(), nf.Available)
	assert.Contains(t, err.Error(), "dovetail")
}

func TestReconcile_DefaultBudget(t *testing.T) {
	drifts := Reconcile(Default(2026))
	got := make(map[string]Drift)
	for _, d := range drifts {
		got[d.Field] = d
	}
	require.Len(t, got, 4)
	assert.True(t, got["total_inflows"].Difference.Equal(dec("1")))
	assert.True(t, got["total_expenses"].Difference.Equal(dec("-2")))
	assert.True(t, got["projected_surplus"].Computed.Equal(dec("1265177")))
	assert.True(t, got["projected_surplus"].Reported.Equal(dec("1265175")))
	assert.True(t, got["total_grant_income"].Computed.Equal(dec("2938535")))
}

func TestReconcile_SkipsMissingFigures(t *testing.T) {
	b := Default(2026)
	b.Reported = model.ReportedTotals{TotalInflows: dec("3101283")}
	assert.Empty(t, Reconcile(b))
}

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("budget.YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	f, err = FormatFor("b.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	f, err = FormatFor("b.toml")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)
	_, err = FormatFor("budget.json")
	assert.Error(t, err)
}

func assertSameBudget(t *testing.T, want, got *model.Budget) {
	t.Helper()
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.FiscalYear, got.FiscalYear)
	assert.True(t, want.OpeningBalance.Equal(got.OpeningBalance))
	assert.True(t, want.ExchangeRate.Equal(got.ExchangeRate))
	for _, m := range model.Months() {
		assert.True(t, want.MonthlyInflows[m].Equal(got.MonthlyInflows[m]), "inflow %s", m)
		assert.True(t, want.MonthlyExpenses[m].Equal(got.MonthlyExpenses[m]), "expense %s", m)
	}
	require.Len(t, got.Grants, len(want.Grants))
	for id, g := range want.Grants {
		gg, ok := got.Grants[id]
		require.True(t, ok, "grant %s", id)
		assert.True(t, g.Amount.Equal(gg.Amount))
		assert.Equal(t, g.DisbursementMonths(), gg.DisbursementMonths())
		assert.Equal(t, g.Notes, gg.Notes)
	}
	require.Len(t, got.PartnerRevenue, len(want.PartnerRevenue))
	for id, p := range want.PartnerRevenue {
		assert.True(t, p.Monthly().Sum().Equal(got.PartnerRevenue[id].Monthly().Sum()), "partner %s", id)
	}
	for id, r := range want.RentalIncome {
		assert.True(t, r.Timing.Sum().Equal(got.RentalIncome[id].Timing.Sum()), "rental %s", id)
	}
	for id, p := range want.UnitEconomics {
		assert.Equal(t, p.Students, got.UnitEconomics[id].Students)
		assert.True(t, p.CostPerChild.Equal(got.UnitEconomics[id].CostPerChild))
	}
	assert.True(t, want.Reported.ProjectedSurplus.Equal(got.Reported.ProjectedSurplus))
}

func TestSaveLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.yaml")
	want := Default(2026)
	require.NoError(t, Save(path, want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "opening_balance:")
	assert.Contains(t, string(data), "mulago:")

	got, err := Load(path)
	require.NoError(t, err)
	assertSameBudget(t, want, got)
}

func TestSaveLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.toml")
	want := Default(2026)
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assertSameBudget(t, want, got)
}

func TestRead_YAMLNumbers(t *testing.T) {
	src := `
name: Small
fiscal_year: 2027
opening_balance: 1000
exchange_rate: 280.5
monthly_inflows: {Jan: 100, Feb: 200.25}
monthly_expenses: {Jan: 50}
grants:
  seed:
    amount: 300
    timing: {Mar: 300}
`
	b, err := Read(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)
	assert.True(t, b.ExchangeRate.Equal(dec("280.5")))
	assert.True(t, b.MonthlyInflows[model.Feb].Equal(dec("200.25")))
	assert.True(t, b.MonthlyExpenses[model.Dec].IsZero())
	assert.True(t, b.Grants["seed"].Timing[model.Mar].Equal(dec("300")))
}

func TestRead_TOMLNumbers(t *testing.T) {
	src := `
name = "Small"
fiscal_year = 2027
opening_balance = 1000
exchange_rate = 283

[monthly_inflows]
Jan = 100

[monthly_expenses]
Dec = 75

[grants.seed]
amount = 300
[grants.seed.timing]
Mar = 300
`
	b, err := Read(strings.NewReader(src), FormatTOML)
	require.NoError(t, err)
	assert.True(t, b.OpeningBalance.Equal(dec("1000")))
	assert.True(t, b.MonthlyExpenses[model.Dec].Equal(dec("75")))
	assert.True(t, b.Grants["seed"].Amount.Equal(dec("300")))
}

func TestRead_RejectsUnknownMonth(t *testing.T) {
	src := "opening_balance: 1\nmonthly_inflows: {Jan: 1, Janaury: 5}\n"
	_, err := Read(strings.NewReader(src), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monthly_inflows")
	assert.Contains(t, err.Error(), "Janaury")

	src = "grants:\n  g:\n    amount: 1\n    timing: {Q1: 1}\n"
	_, err = Read(strings.NewReader(src), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grant g timing")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("xml"), Default(2026)))
}
