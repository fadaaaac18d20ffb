// Package statement turns raw OpenDART line items into the fixed
// key-account shape the viewer renders. Normalization is pure: no I/O, no
// clock, fully deterministic over its input.
package statement

import (
	"strings"

	"github.com/dartview/dartview-go/internal/domain"
)

// Normalize extracts the key accounts for one consolidation scope from a
// raw payload. It filters by scope, partitions by statement type, resolves
// period labels, picks each key account by exact name (first match wins),
// and reconstructs missing current/non-current splits from the totals.
func Normalize(items []domain.LineItem, scope string) *domain.NormalizedStatement {
	st := &domain.NormalizedStatement{Scope: scope}

	var scoped []domain.LineItem
	for _, it := range items {
		if it.Scope == scope {
			scoped = append(scoped, it)
		}
	}
	if len(scoped) == 0 {
		st.Empty = true
		return st
	}

	var bs, is []domain.LineItem
	for _, it := range scoped {
		switch it.StatementType {
		case domain.StatementBS:
			bs = append(bs, it)
		case domain.StatementIS:
			is = append(is, it)
		}
	}

	st.Periods = periodLabels(bs, is)
	st.BalanceSheet = extract(bs, domain.BalanceSheetAccounts, st)
	st.IncomeStatement = extract(is, domain.IncomeStatementAccounts, st)

	if len(bs) > 0 {
		derive(st)
	}
	return st
}

// periodLabels resolves the year label per column, preferring the balance
// sheet row and falling back to the income statement. The label is the
// leading four characters of the upstream date string.
func periodLabels(bs, is []domain.LineItem) domain.PeriodLabels {
	var labels domain.PeriodLabels
	for col := 0; col < 3; col++ {
		var raw string
		if len(bs) > 0 {
			raw = bs[0].DateLabel(col)
		}
		if strings.TrimSpace(raw) == "" && len(is) > 0 {
			raw = is[0].DateLabel(col)
		}
		year := strings.TrimSpace(raw)
		if len(year) >= 4 {
			year = year[:4]
		} else {
			year = ""
		}
		switch col {
		case 0:
			labels.Current = year
		case 1:
			labels.Prior = year
		default:
			labels.PriorPrior = year
		}
	}
	return labels
}

// extract builds one series per key account in enumeration order. Matching
// is by exact account name; when several rows carry the same name the first
// wins and the name is recorded as a duplicate.
func extract(items []domain.LineItem, accounts []domain.KeyAccount, st *domain.NormalizedStatement) []domain.NormalizedSeries {
	series := make([]domain.NormalizedSeries, 0, len(accounts))
	for _, account := range accounts {
		s := domain.NormalizedSeries{Account: account, AccountName: account.Name()}
		matched := false
		for _, it := range items {
			if strings.TrimSpace(it.AccountName) != account.Name() {
				continue
			}
			if matched {
				st.DuplicateAccounts = append(st.DuplicateAccounts, account.Name())
				break
			}
			matched = true
			for col := 0; col < 3; col++ {
				if v, ok := ParseAmount(it.Amount(col)); ok {
					n := v
					s.SetCol(col, &n)
				}
			}
		}
		series = append(series, s)
	}
	return series
}

// derive reconstructs the current/non-current split of assets and
// liabilities wherever the upstream dropped one or both legs. With both
// legs absent the whole total is attributed to the current leg; with one
// leg present the other becomes total minus present. When the total itself
// is missing the derivation runs against zero and the statement is flagged
// as unreliable for that side.
func derive(st *domain.NormalizedStatement) {
	st.AssetsDerivationUnreliable = deriveSplit(
		st.Series(domain.TotalAssets),
		st.Series(domain.CurrentAssets),
		st.Series(domain.NonCurrentAssets),
	)
	st.LiabilitiesDerivationUnreliable = deriveSplit(
		st.Series(domain.TotalLiabilities),
		st.Series(domain.CurrentLiabilities),
		st.Series(domain.NonCurrentLiabilities),
	)
}

func deriveSplit(total, current, nonCurrent *domain.NormalizedSeries) bool {
	unreliable := false
	for col := 0; col < 3; col++ {
		cur, non := current.Col(col), nonCurrent.Col(col)
		if cur != nil && non != nil {
			continue
		}

		var t int64
		if tv := total.Col(col); tv != nil {
			t = *tv
		} else {
			unreliable = true
		}

		switch {
		case cur == nil && non == nil:
			v := t
			current.SetCol(col, &v)
		case cur == nil:
			v := t - *non
			current.SetCol(col, &v)
		default:
			v := t - *cur
			nonCurrent.SetCol(col, &v)
		}
	}
	return unreliable
}
