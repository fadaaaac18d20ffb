package statement

import (
	"testing"

	"github.com/dartview/dartview-go/internal/domain"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"1,234,567", 1234567, true},
		{"-45,000", -45000, true},
		{" 100 ", 100, true},
		{"0", 0, true},
		{"", 0, false},
		{"-", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseAmount(c.raw)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseAmount(%q) = (%d, %v), want (%d, %v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func item(name, sj, fs, cur, prior, priorPrior string) domain.LineItem {
	return domain.LineItem{
		AccountName:      name,
		StatementType:    sj,
		Scope:            fs,
		CurrentAmount:    cur,
		PriorAmount:      prior,
		PriorPriorAmount: priorPrior,
		CurrentDate:      "2023.12.31 현재",
		PriorDate:        "2022.12.31 현재",
		PriorPriorDate:   "2021.12.31 현재",
	}
}

func fullPayload() []domain.LineItem {
	return []domain.LineItem{
		item("자산총계", "BS", "CFS", "1,000", "900", "800"),
		item("유동자산", "BS", "CFS", "600", "500", "450"),
		item("비유동자산", "BS", "CFS", "400", "400", "350"),
		item("부채총계", "BS", "CFS", "300", "280", "260"),
		item("유동부채", "BS", "CFS", "200", "180", "170"),
		item("비유동부채", "BS", "CFS", "100", "100", "90"),
		item("자본총계", "BS", "CFS", "700", "620", "540"),
		item("매출액", "IS", "CFS", "2,000", "1,800", "1,600"),
		item("영업이익", "IS", "CFS", "250", "220", "200"),
		item("법인세차감전 순이익", "IS", "CFS", "230", "200", "180"),
		item("당기순이익", "IS", "CFS", "180", "160", "140"),
	}
}

func mustCol(t *testing.T, s *domain.NormalizedSeries, col int) int64 {
	t.Helper()
	v := s.Col(col)
	if v == nil {
		t.Fatalf("%s column %d unexpectedly absent", s.AccountName, col)
	}
	return *v
}

func TestNormalizeFullStatement(t *testing.T) {
	st := Normalize(fullPayload(), domain.ScopeConsolidated)

	if st.Empty {
		t.Fatal("statement unexpectedly empty")
	}
	if len(st.BalanceSheet) != 7 || len(st.IncomeStatement) != 4 {
		t.Fatalf("unexpected series counts: BS=%d IS=%d", len(st.BalanceSheet), len(st.IncomeStatement))
	}
	if st.Periods.Current != "2023" || st.Periods.Prior != "2022" || st.Periods.PriorPrior != "2021" {
		t.Errorf("unexpected period labels: %+v", st.Periods)
	}
	if got := mustCol(t, st.Series(domain.TotalAssets), 0); got != 1000 {
		t.Errorf("total assets = %d, want 1000", got)
	}
	if got := mustCol(t, st.Series(domain.Revenue), 2); got != 1600 {
		t.Errorf("prior-prior revenue = %d, want 1600", got)
	}
	if st.AssetsDerivationUnreliable || st.LiabilitiesDerivationUnreliable {
		t.Error("complete payload should not be flagged unreliable")
	}
}

func TestNormalizeScopeFilter(t *testing.T) {
	items := append(fullPayload(),
		item("자산총계", "BS", "OFS", "111", "110", "109"),
	)

	cfs := Normalize(items, domain.ScopeConsolidated)
	if got := mustCol(t, cfs.Series(domain.TotalAssets), 0); got != 1000 {
		t.Errorf("consolidated total assets = %d, want 1000", got)
	}

	ofs := Normalize(items, domain.ScopeSeparate)
	if got := mustCol(t, ofs.Series(domain.TotalAssets), 0); got != 111 {
		t.Errorf("separate total assets = %d, want 111", got)
	}
}

func TestNormalizeEmptyScope(t *testing.T) {
	st := Normalize(fullPayload(), domain.ScopeSeparate)
	if !st.Empty {
		t.Fatal("expected empty statement when no rows match the scope")
	}
	if st.AssetsDerivationUnreliable || len(st.BalanceSheet) != 0 {
		t.Error("empty statement must carry no derived data")
	}
}

func TestNormalizeDerivesMissingSplit(t *testing.T) {
	items := []domain.LineItem{
		item("자산총계", "BS", "CFS", "1,000", "900", "800"),
		item("유동자산", "BS", "CFS", "600", "", ""),
		item("부채총계", "BS", "CFS", "300", "280", "260"),
		item("자본총계", "BS", "CFS", "700", "620", "540"),
	}
	st := Normalize(items, domain.ScopeConsolidated)

	// one leg present: the other becomes total minus present
	if got := mustCol(t, st.Series(domain.NonCurrentAssets), 0); got != 400 {
		t.Errorf("derived non-current assets = %d, want 400", got)
	}
	// both legs absent: the whole total goes to the current leg and the
	// non-current leg stays absent
	if got := mustCol(t, st.Series(domain.CurrentAssets), 1); got != 900 {
		t.Errorf("derived current assets (prior) = %d, want 900", got)
	}
	if v := st.Series(domain.NonCurrentAssets).Col(1); v != nil {
		t.Errorf("non-current assets (prior) = %d, want absent", *v)
	}
	if got := mustCol(t, st.Series(domain.CurrentLiabilities), 0); got != 300 {
		t.Errorf("derived current liabilities = %d, want 300", got)
	}
	if v := st.Series(domain.NonCurrentLiabilities).Col(0); v != nil {
		t.Errorf("non-current liabilities = %d, want absent", *v)
	}
	if st.AssetsDerivationUnreliable || st.LiabilitiesDerivationUnreliable {
		t.Error("derivation with totals present should not be flagged")
	}
}

func TestNormalizeFlagsDerivationWithoutTotal(t *testing.T) {
	items := []domain.LineItem{
		item("유동자산", "BS", "CFS", "600", "500", "450"),
		item("부채총계", "BS", "CFS", "300", "280", "260"),
		item("유동부채", "BS", "CFS", "200", "180", "170"),
		item("비유동부채", "BS", "CFS", "100", "100", "90"),
	}
	st := Normalize(items, domain.ScopeConsolidated)

	if !st.AssetsDerivationUnreliable {
		t.Error("expected assets flagged unreliable when the total is missing")
	}
	if st.LiabilitiesDerivationUnreliable {
		t.Error("liabilities split is complete and must not be flagged")
	}
	if got := mustCol(t, st.Series(domain.NonCurrentAssets), 0); got != -600 {
		t.Errorf("derived non-current assets = %d, want -600 against the zero total", got)
	}
}

func TestNormalizeFirstMatchWinsAndRecordsDuplicates(t *testing.T) {
	items := []domain.LineItem{
		item("자산총계", "BS", "CFS", "1,000", "900", "800"),
		item("자산총계", "BS", "CFS", "5,000", "4,000", "3,000"),
	}
	st := Normalize(items, domain.ScopeConsolidated)

	if got := mustCol(t, st.Series(domain.TotalAssets), 0); got != 1000 {
		t.Errorf("total assets = %d, first match must win", got)
	}
	if len(st.DuplicateAccounts) != 1 || st.DuplicateAccounts[0] != "자산총계" {
		t.Errorf("expected duplicate 자산총계 recorded, got %v", st.DuplicateAccounts)
	}
}

func TestNormalizePeriodLabelsFallBackToIncomeStatement(t *testing.T) {
	items := []domain.LineItem{
		item("매출액", "IS", "CFS", "2,000", "1,800", "1,600"),
	}
	st := Normalize(items, domain.ScopeConsolidated)

	if st.Periods.Current != "2023" {
		t.Errorf("expected label from income statement row, got %q", st.Periods.Current)
	}
}
