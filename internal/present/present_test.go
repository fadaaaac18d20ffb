package present

import (
	"testing"

	"github.com/dartview/dartview-go/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func normalized() *domain.NormalizedStatement {
	st := &domain.NormalizedStatement{
		Scope: domain.ScopeConsolidated,
		Periods: domain.PeriodLabels{
			Current: "2023", Prior: "2022", PriorPrior: "2021",
		},
	}
	for _, a := range domain.BalanceSheetAccounts {
		st.BalanceSheet = append(st.BalanceSheet, domain.NormalizedSeries{
			Account: a, AccountName: a.Name(),
			Current: ptr(1_000_000_000_000), Prior: ptr(900_000_000_000), PriorPrior: ptr(800_000_000_000),
		})
	}
	for _, a := range domain.IncomeStatementAccounts {
		st.IncomeStatement = append(st.IncomeStatement, domain.NormalizedSeries{
			Account: a, AccountName: a.Name(),
			Current: ptr(500_000_000_000), Prior: ptr(450_000_000_000),
		})
	}
	return st
}

func TestBuildViewTables(t *testing.T) {
	view := BuildView(normalized())

	if len(view.BalanceSheetTable) != 7 || len(view.IncomeStatementTable) != 4 {
		t.Fatalf("unexpected table sizes: BS=%d IS=%d",
			len(view.BalanceSheetTable), len(view.IncomeStatementTable))
	}
	if view.BalanceSheetTable[0].Account != "자산총계" {
		t.Errorf("first balance sheet row = %s, want 자산총계", view.BalanceSheetTable[0].Account)
	}
	if got := view.BalanceSheetTable[0].Cells[0]; got != "1조" {
		t.Errorf("total assets cell = %q, want 1조", got)
	}
	// income statement has no prior-prior figures: cells render "-"
	if got := view.IncomeStatementTable[0].Cells[2]; got != "-" {
		t.Errorf("absent figure rendered %q, want -", got)
	}
}

func TestBuildViewCharts(t *testing.T) {
	view := BuildView(normalized())

	bs := view.BalanceSheetChart
	if bs == nil {
		t.Fatal("balance sheet chart missing")
	}
	if bs.Labels[0] != "당기 (2023)" || bs.Labels[2] != "전전기 (2021)" {
		t.Errorf("unexpected period labels: %v", bs.Labels)
	}
	if len(bs.Datasets) != 7 {
		t.Fatalf("balance sheet chart datasets = %d, want 7", len(bs.Datasets))
	}
	var lines int
	for _, ds := range bs.Datasets {
		if ds.Type == "line" {
			lines++
		}
	}
	if lines != 3 {
		t.Errorf("expected the three totals as line overlays, got %d", lines)
	}

	eq := view.EquationChart
	if eq == nil || len(eq.Datasets) != 5 {
		t.Fatal("equation chart must carry five stacked datasets")
	}
	stacks := map[string]int{}
	for _, ds := range eq.Datasets {
		stacks[ds.Stack]++
	}
	if stacks["assets"] != 2 || stacks["claims"] != 3 {
		t.Errorf("unexpected stack layout: %v", stacks)
	}

	is := view.IncomeChart
	if is == nil || len(is.Datasets) != 3 {
		t.Fatal("income chart must carry three datasets")
	}
	if is.Datasets[0].Label != "매출액" {
		t.Errorf("first income dataset = %s", is.Datasets[0].Label)
	}
}

func TestBuildViewAxisTicks(t *testing.T) {
	view := BuildView(normalized())

	ticks := view.BalanceSheetChart.AxisTicks
	if len(ticks) != 6 {
		t.Fatalf("expected 6 axis ticks, got %d", len(ticks))
	}
	if ticks[0] != "0" || ticks[5] != "1.0조" {
		t.Errorf("unexpected tick endpoints: first=%q last=%q", ticks[0], ticks[5])
	}
}

func TestBuildViewTooltips(t *testing.T) {
	view := BuildView(normalized())

	tip := view.IncomeChart.Datasets[0].Tooltips[0]
	if tip != "500,000,000,000원 (5000억)" {
		t.Errorf("unexpected tooltip: %q", tip)
	}
}

func TestBuildViewEmpty(t *testing.T) {
	view := BuildView(&domain.NormalizedStatement{Scope: domain.ScopeSeparate, Empty: true})

	if !view.Empty {
		t.Fatal("empty flag dropped")
	}
	if view.BalanceSheetChart != nil || len(view.BalanceSheetTable) != 0 {
		t.Error("empty view must carry no tables or charts")
	}
}
