package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/model"
	"github.com/fundcast/fundcast/internal/scenario"
	"github.com/fundcast/fundcast/internal/sensitivity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1265177, "1,265,177"},
		{-700380, "-700,380"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,265,177", FormatCurrency(dec("1265177")))
	assert.Equal(t, "-$700,380", FormatCurrency(dec("-700380.43")))
	assert.Equal(t, "$1", FormatCurrency(dec("0.5")))
	assert.Equal(t, "+$310,128", FormatDelta(dec("310128.3")))
	assert.Equal(t, "-$255,935", FormatDelta(dec("-255935.4")))
	assert.Equal(t, "$0", FormatDelta(decimal.Zero))
}

func TestFormatPercentAndRunway(t *testing.T) {
	assert.Equal(t, "-40.80%", FormatPercent(dec("-40.7952773")))
	assert.Equal(t, "32.3%", FormatShare(dec("0.32329")))
	assert.Equal(t, "5.9 mo", FormatRunway(model.Runway{Months: dec("5.932")}))
	assert.Equal(t, "unlimited", FormatRunway(model.InfiniteRunway))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)
	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "-700380.43", FormatCSV.Money(dec("-700380.43")))
	assert.Equal(t, "-$700,380", FormatTable.Money(dec("-700380.43")))
	assert.Equal(t, "inf", FormatCSV.Runway(model.InfiniteRunway))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Example",
		Headers: []string{"Month", "Closing"},
		Rows:    [][]string{{"Jan", "$672,288"}, Separator, {"Dec", "$1,265,177"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "Example")
	assert.True(t, strings.HasPrefix(lines[1], "╭"))
	assert.Contains(t, lines[2], "Month")
	assert.Contains(t, lines[4], "Jan")
	assert.True(t, strings.HasPrefix(lines[5], "├"))
	assert.Contains(t, lines[6], "$1,265,177")
	assert.True(t, strings.HasPrefix(lines[7], "╰"))

	assert.Empty(t, RenderTable(Table{}))
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"1", "x,y"}, Separator, {"2", "z"}},
	}
	require.NoError(t, Write(&buf, FormatCSV, tbl))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x,y"}, {"2", "z"}}, records)
}

func TestPositions(t *testing.T) {
	ps := []model.MonthlyPosition{
		{Month: model.Jan, Opening: dec("100"), Inflow: dec("0"), Outflow: dec("50"), Closing: dec("50")},
		{Month: model.Feb, Opening: dec("50"), Inflow: dec("0"), Outflow: dec("60"), Closing: dec("-10")},
		{Month: model.Mar, Opening: dec("-10"), Inflow: dec("500"), Outflow: dec("0"), Closing: dec("490")},
	}
	tbl := Positions(FormatCSV, ps, dec("100"))
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "low", tbl.Rows[0][6])
	assert.Equal(t, "negative", tbl.Rows[1][6])
	assert.Equal(t, "", tbl.Rows[2][6])
	assert.Equal(t, "-60.00", tbl.Rows[1][4])
	assert.Equal(t, "-10.00", tbl.Rows[1][5])
}

func TestSummary(t *testing.T) {
	f := cashflow.FromBudget(budget.Default(2026))
	tbl := Summary(FormatTable, f)
	out := RenderTable(tbl)
	assert.Contains(t, out, "$1,265,177")
	assert.Contains(t, out, "$672,288")
	assert.Contains(t, out, "5.9 mo")

	tbl = Summary(FormatCSV, f)
	assert.Contains(t, tbl.Rows, []string{"Minimum cash", "672288.00"})
	assert.Contains(t, tbl.Rows, []string{"Minimum cash month", "Jan"})
}

func TestScenarios(t *testing.T) {
	e := scenario.NewEngine(budget.Default(2026))
	_, err := e.SimulateGrantLoss("mulago")
	require.NoError(t, err)
	e.RunAll()

	tbl := Scenarios(FormatCSV, e.Results())
	require.Len(t, tbl.Rows, 4)
	assert.Equal(t, "Base Case (Budget)", tbl.Rows[0][0])
	assert.Equal(t, "-700380.43", tbl.Rows[2][6])
	assert.Equal(t, "mulago", tbl.Rows[3][10])
}

func TestSensitivityTables(t *testing.T) {
	e := sensitivity.NewEngine(budget.Default(2026))

	rows, err := e.Table(sensitivity.Revenue, nil)
	require.NoError(t, err)
	tbl := Sensitivity(FormatTable, rows)
	assert.Equal(t, "Sensitivity: revenue", tbl.Title)
	require.Len(t, tbl.Rows, 7)
	assert.Equal(t, "-30.00%", tbl.Rows[0][0])
	assert.Equal(t, "0.0 mo", tbl.Rows[3][5])

	deps := Dependencies(FormatCSV, e.GrantDependencyList())
	assert.Equal(t, "mulago", deps.Rows[0][0])
	assert.Equal(t, "no", deps.Rows[0][6])

	be := BreakEven(FormatTable, sensitivity.Variables(), map[sensitivity.Variable]decimal.Decimal{
		sensitivity.Revenue: dec("-40.7953"),
	})
	assert.Equal(t, "-40.80%", be.Rows[0][1])
	assert.Equal(t, "none in range", be.Rows[1][1])

	fx := ExchangeRates(FormatTable, "PKR", e.ExchangeRate(nil))
	assert.Equal(t, "Surplus (PKR)", fx.Headers[3])
	assert.Equal(t, "358,045,091", fx.Rows[2][3])

	d, err := e.RevenueDelay(3)
	require.NoError(t, err)
	delay := Delay(FormatTable, d)
	assert.Equal(t, "Apr", delay.Rows[5][1])
}

func TestViolations(t *testing.T) {
	tbl := Violations([]budget.ValidationError{{Invariant: 1, Subject: "grant x", Description: "bad"}})
	assert.Equal(t, []string{"1", "grant x", "bad"}, tbl.Rows[0])
}

func TestWriteWorkbook(t *testing.T) {
	fc := cashflow.FromBudget(budget.Default(2026))
	e := scenario.NewEngine(budget.Default(2026))
	tables := []Table{
		Positions(FormatCSV, fc.Positions(), dec("500000")),
		Scenarios(FormatCSV, e.RunAll()),
		{Title: "Sensitivity: revenue", Headers: []string{"A"}, Rows: [][]string{{"1"}, Separator, {"inf"}}},
		{Title: "Sensitivity: revenue", Headers: []string{"A"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, tables))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{
		"Monthly Cash Position",
		"Scenario Comparison",
		"Sensitivity revenue",
		"Sensitivity revenue (2)",
	}, wb.GetSheetList())

	rows, err := wb.GetRows("Monthly Cash Position")
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, "Closing", rows[0][5])
	assert.Equal(t, "Dec", rows[12][0])
	assert.Equal(t, "1265177", rows[12][5])

	rows, err = wb.GetRows("Scenario Comparison")
	require.NoError(t, err)
	assert.Equal(t, "Pessimistic (Worst Case)", rows[3][0])
	assert.Equal(t, "-700380.43", rows[3][6])

	rows, err = wb.GetRows("Sensitivity revenue")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A"}, {"1"}, {"inf"}}, rows, "separator rows are skipped")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Without mulago", sheetName("Without mulago", 0))
	assert.Equal(t, "Sheet3", sheetName("[]", 2))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40), 0)), maxSheetName)

	used := map[string]bool{}
	long := strings.Repeat("y", maxSheetName)
	assert.Equal(t, long, uniqueSheetName(long, used))
	second := uniqueSheetName(long, used)
	assert.Len(t, []rune(second), maxSheetName)
	assert.True(t, strings.HasSuffix(second, " (2)"))
}
