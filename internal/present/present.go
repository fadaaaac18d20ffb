// Package present builds the display model for a normalized statement:
// formatted tables plus ready-to-render chart configurations with period
// labels, axis ticks and tooltips precomputed server-side.
package present

import (
	"fmt"

	"github.com/dartview/dartview-go/internal/domain"
)

const axisSteps = 5

// Period display names, current to prior-prior.
var periodNames = [3]string{"당기", "전기", "전전기"}

// TableRow is one formatted statement line.
type TableRow struct {
	Account string    `json:"account"`
	Cells   [3]string `json:"cells"`
}

// Dataset is one chart series across the three periods.
type Dataset struct {
	Label    string    `json:"label"`
	Data     [3]int64  `json:"data"`
	Type     string    `json:"type,omitempty"`
	Stack    string    `json:"stack,omitempty"`
	Tooltips [3]string `json:"tooltips"`
}

// ChartConfig is a renderable chart: period labels on the x axis, datasets,
// and evenly spaced y-axis tick labels from zero to the data maximum.
type ChartConfig struct {
	Labels    [3]string `json:"labels"`
	Datasets  []Dataset `json:"datasets"`
	AxisTicks []string  `json:"axis_ticks"`
}

// StatementView is the full display model for one normalized statement.
type StatementView struct {
	Scope   string              `json:"fs_div"`
	Periods domain.PeriodLabels `json:"periods"`

	BalanceSheetTable    []TableRow `json:"balance_sheet_table"`
	IncomeStatementTable []TableRow `json:"income_statement_table"`

	BalanceSheetChart *ChartConfig `json:"balance_sheet_chart,omitempty"`
	EquationChart     *ChartConfig `json:"equation_chart,omitempty"`
	IncomeChart       *ChartConfig `json:"income_chart,omitempty"`

	Empty                           bool     `json:"empty"`
	AssetsDerivationUnreliable      bool     `json:"assets_derivation_unreliable"`
	LiabilitiesDerivationUnreliable bool     `json:"liabilities_derivation_unreliable"`
	DuplicateAccounts               []string `json:"duplicate_accounts,omitempty"`
}

// BuildView assembles the complete display model. An empty statement yields
// an empty view with no tables or charts.
func BuildView(st *domain.NormalizedStatement) *StatementView {
	view := &StatementView{
		Scope:                           st.Scope,
		Periods:                         st.Periods,
		Empty:                           st.Empty,
		AssetsDerivationUnreliable:      st.AssetsDerivationUnreliable,
		LiabilitiesDerivationUnreliable: st.LiabilitiesDerivationUnreliable,
		DuplicateAccounts:               st.DuplicateAccounts,
	}
	if st.Empty {
		return view
	}

	view.BalanceSheetTable = buildTable(st.BalanceSheet)
	view.IncomeStatementTable = buildTable(st.IncomeStatement)
	view.BalanceSheetChart = BuildBalanceSheetChart(st)
	view.EquationChart = BuildEquationChart(st)
	view.IncomeChart = BuildIncomeChart(st)
	return view
}

func buildTable(series []domain.NormalizedSeries) []TableRow {
	rows := make([]TableRow, 0, len(series))
	for _, s := range series {
		row := TableRow{Account: s.AccountName}
		for col := 0; col < 3; col++ {
			row.Cells[col] = FormatAmount(s.Col(col))
		}
		rows = append(rows, row)
	}
	return rows
}

// periodAxisLabels renders "당기 (2023)" style x-axis labels, dropping the
// year when the upstream gave none.
func periodAxisLabels(periods domain.PeriodLabels) [3]string {
	var labels [3]string
	for col := 0; col < 3; col++ {
		if year := periods.Col(col); year != "" {
			labels[col] = fmt.Sprintf("%s (%s)", periodNames[col], year)
		} else {
			labels[col] = periodNames[col]
		}
	}
	return labels
}

func dataset(st *domain.NormalizedStatement, account domain.KeyAccount, typ, stack string) Dataset {
	ds := Dataset{Label: account.Name(), Type: typ, Stack: stack}
	s := st.Series(account)
	for col := 0; col < 3; col++ {
		var v int64
		if s != nil {
			if p := s.Col(col); p != nil {
				v = *p
			}
		}
		ds.Data[col] = v
		ds.Tooltips[col] = Tooltip(v)
	}
	return ds
}

// axisTicks computes evenly spaced tick labels from zero to the largest
// value across all datasets.
func axisTicks(datasets []Dataset) []string {
	var max int64
	for _, ds := range datasets {
		for _, v := range ds.Data {
			if v > max {
				max = v
			}
		}
	}
	ticks := make([]string, 0, axisSteps+1)
	if max == 0 {
		return append(ticks, "0")
	}
	step := max / axisSteps
	for i := 0; i <= axisSteps; i++ {
		ticks = append(ticks, AxisTick(int64(i)*step))
	}
	return ticks
}

func chart(st *domain.NormalizedStatement, datasets []Dataset) *ChartConfig {
	return &ChartConfig{
		Labels:    periodAxisLabels(st.Periods),
		Datasets:  datasets,
		AxisTicks: axisTicks(datasets),
	}
}

// BuildBalanceSheetChart builds the grouped balance-sheet chart: the
// current/non-current splits as bars with the three totals overlaid as
// lines.
func BuildBalanceSheetChart(st *domain.NormalizedStatement) *ChartConfig {
	return chart(st, []Dataset{
		dataset(st, domain.CurrentAssets, "bar", ""),
		dataset(st, domain.NonCurrentAssets, "bar", ""),
		dataset(st, domain.TotalAssets, "line", ""),
		dataset(st, domain.CurrentLiabilities, "bar", ""),
		dataset(st, domain.NonCurrentLiabilities, "bar", ""),
		dataset(st, domain.TotalLiabilities, "line", ""),
		dataset(st, domain.TotalEquity, "line", ""),
	})
}

// BuildEquationChart builds the stacked accounting-equation chart: assets
// on one stack against liabilities plus equity on the other, per period.
func BuildEquationChart(st *domain.NormalizedStatement) *ChartConfig {
	return chart(st, []Dataset{
		dataset(st, domain.CurrentAssets, "bar", "assets"),
		dataset(st, domain.NonCurrentAssets, "bar", "assets"),
		dataset(st, domain.CurrentLiabilities, "bar", "claims"),
		dataset(st, domain.NonCurrentLiabilities, "bar", "claims"),
		dataset(st, domain.TotalEquity, "bar", "claims"),
	})
}

// BuildIncomeChart builds the income-statement bar chart for revenue,
// operating profit and net income.
func BuildIncomeChart(st *domain.NormalizedStatement) *ChartConfig {
	return chart(st, []Dataset{
		dataset(st, domain.Revenue, "bar", ""),
		dataset(st, domain.OperatingProfit, "bar", ""),
		dataset(st, domain.NetIncome, "bar", ""),
	})
}
