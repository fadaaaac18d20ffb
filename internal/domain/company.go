package domain

// Company is one entry of the corporate directory published by OpenDART.
// The JSON field names match the upstream corpCode archive so the files
// written by corpsync can be loaded without translation.
type Company struct {
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	CorpNameEng string `json:"corp_name_eng"` // "" when the company has no registered English name
	StockCode   string `json:"stock_code"`
	ModifyDate  string `json:"modify_date"`
}

// Listed reports whether the company has a stock ticker, i.e. is listed
// on an exchange. Unlisted companies carry a blank stock_code.
func (c Company) Listed() bool {
	for _, r := range c.StockCode {
		if r != ' ' {
			return true
		}
	}
	return false
}

// SearchResult is the payload of GET /api/search. Seq is a monotonically
// increasing request sequence number: a debounced caller keeps the highest
// seq it has seen and drops responses that arrive out of order.
type SearchResult struct {
	Results []Company `json:"results"`
	Seq     uint64    `json:"seq"`
}

// AutocompleteResult is the payload of GET /api/autocomplete.
type AutocompleteResult struct {
	Suggestions []Company `json:"suggestions"`
	Seq         uint64    `json:"seq"`
}
