package domain

import "encoding/json"

// Statement types and consolidation scopes as OpenDART encodes them.
const (
	StatementBS = "BS" // balance sheet
	StatementIS = "IS" // income statement

	ScopeConsolidated = "CFS"
	ScopeSeparate     = "OFS"
)

// Report period codes accepted by the fnlttSinglAcnt endpoint.
const (
	ReportQ1     = "11013"
	ReportHalf   = "11012"
	ReportQ3     = "11014"
	ReportAnnual = "11011"
)

// LineItem is one raw row of the upstream statement payload. Amount fields
// are digit strings that may contain thousands separators and a leading
// sign; an empty string means "no data", never zero.
type LineItem struct {
	AccountName      string `json:"account_nm"`
	StatementType    string `json:"sj_div"`
	Scope            string `json:"fs_div"`
	CurrentAmount    string `json:"thstrm_amount"`
	PriorAmount      string `json:"frmtrm_amount"`
	PriorPriorAmount string `json:"bfefrmtrm_amount"`
	CurrentDate      string `json:"thstrm_dt"`
	PriorDate        string `json:"frmtrm_dt"`
	PriorPriorDate   string `json:"bfefrmtrm_dt"`
}

// Amount returns the raw amount string for a period column (0 = current,
// 1 = prior, 2 = prior-prior).
func (it LineItem) Amount(col int) string {
	switch col {
	case 0:
		return it.CurrentAmount
	case 1:
		return it.PriorAmount
	default:
		return it.PriorPriorAmount
	}
}

// DateLabel returns the raw date label for a period column.
func (it LineItem) DateLabel(col int) string {
	switch col {
	case 0:
		return it.CurrentDate
	case 1:
		return it.PriorDate
	default:
		return it.PriorPriorDate
	}
}

// StatementPayload is the upstream response envelope. A status other than
// "000" is a business error reported by the API, not a transport failure.
// The rows stay raw so the passthrough endpoint relays them byte for byte,
// including fields the viewer itself never reads.
type StatementPayload struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	List    json.RawMessage `json:"list,omitempty"`
}

// Items decodes the raw rows into line items for normalization.
func (p *StatementPayload) Items() ([]LineItem, error) {
	if len(p.List) == 0 {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(p.List, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// KeyAccount is the closed set of line items the viewer extracts, tables
// and charts. The enumeration order is the display order everywhere; the
// table builder and the chart builders both consume it, so the two can
// never drift apart.
type KeyAccount int

const (
	TotalAssets KeyAccount = iota
	CurrentAssets
	NonCurrentAssets
	TotalLiabilities
	CurrentLiabilities
	NonCurrentLiabilities
	TotalEquity
	Revenue
	OperatingProfit
	PretaxIncome
	NetIncome
)

var keyAccountNames = map[KeyAccount]string{
	TotalAssets:           "자산총계",
	CurrentAssets:         "유동자산",
	NonCurrentAssets:      "비유동자산",
	TotalLiabilities:      "부채총계",
	CurrentLiabilities:    "유동부채",
	NonCurrentLiabilities: "비유동부채",
	TotalEquity:           "자본총계",
	Revenue:               "매출액",
	OperatingProfit:       "영업이익",
	PretaxIncome:          "법인세차감전 순이익",
	NetIncome:             "당기순이익",
}

// Name returns the exact upstream account name for the key account.
func (k KeyAccount) Name() string {
	return keyAccountNames[k]
}

// BalanceSheetAccounts is the ordered balance-sheet enumeration.
var BalanceSheetAccounts = []KeyAccount{
	TotalAssets,
	CurrentAssets,
	NonCurrentAssets,
	TotalLiabilities,
	CurrentLiabilities,
	NonCurrentLiabilities,
	TotalEquity,
}

// IncomeStatementAccounts is the ordered income-statement enumeration.
var IncomeStatementAccounts = []KeyAccount{
	Revenue,
	OperatingProfit,
	PretaxIncome,
	NetIncome,
}

// NormalizedSeries is one key account across the three comparative periods.
// A nil value means the upstream reported no figure for that column.
type NormalizedSeries struct {
	Account     KeyAccount `json:"-"`
	AccountName string     `json:"account"`
	Current     *int64     `json:"current"`
	Prior       *int64     `json:"prior"`
	PriorPrior  *int64     `json:"prior_prior"`
}

// Col returns the value for a period column (0 = current, 1 = prior,
// 2 = prior-prior).
func (s *NormalizedSeries) Col(col int) *int64 {
	switch col {
	case 0:
		return s.Current
	case 1:
		return s.Prior
	default:
		return s.PriorPrior
	}
}

// SetCol stores a value for a period column.
func (s *NormalizedSeries) SetCol(col int, v *int64) {
	switch col {
	case 0:
		s.Current = v
	case 1:
		s.Prior = v
	default:
		s.PriorPrior = v
	}
}

// PeriodLabels holds the three comparative period years. An empty string
// means the upstream date label was absent; display falls back to the bare
// period name.
type PeriodLabels struct {
	Current    string `json:"current"`
	Prior      string `json:"prior"`
	PriorPrior string `json:"prior_prior"`
}

// Col returns the year label for a period column.
func (p PeriodLabels) Col(col int) string {
	switch col {
	case 0:
		return p.Current
	case 1:
		return p.Prior
	default:
		return p.PriorPrior
	}
}

// NormalizedStatement is the output of the normalizer: the fixed key-account
// series in enumeration order, plus period labels and the diagnostics a
// careful caller wants surfaced rather than silently rendered.
type NormalizedStatement struct {
	Scope   string       `json:"fs_div"`
	Periods PeriodLabels `json:"periods"`

	BalanceSheet    []NormalizedSeries `json:"balance_sheet"`
	IncomeStatement []NormalizedSeries `json:"income_statement"`

	// Empty is set when no line item matched the requested scope. It is a
	// valid "no data" state, not an error.
	Empty bool `json:"empty"`

	// Derivation-unreliable flags: the current/non-current split had to be
	// reconstructed while the corresponding total itself was missing, so the
	// derived figures were computed against a zero total.
	AssetsDerivationUnreliable      bool `json:"assets_derivation_unreliable"`
	LiabilitiesDerivationUnreliable bool `json:"liabilities_derivation_unreliable"`

	// DuplicateAccounts lists key-account names that matched more than one
	// line item within the scope. The first match wins; the rest are
	// discarded but reported for diagnosis.
	DuplicateAccounts []string `json:"duplicate_accounts,omitempty"`
}

// Series returns the series for a key account, or nil if the account is not
// part of this statement.
func (st *NormalizedStatement) Series(account KeyAccount) *NormalizedSeries {
	for i := range st.BalanceSheet {
		if st.BalanceSheet[i].Account == account {
			return &st.BalanceSheet[i]
		}
	}
	for i := range st.IncomeStatement {
		if st.IncomeStatement[i].Account == account {
			return &st.IncomeStatement[i]
		}
	}
	return nil
}
