package domain

// ExplainAccounts is the subset of line items handed to the model. The
// prompt stays small and on-topic; detail rows never leave the server.
var ExplainAccounts = []string{
	"자산총계",
	"부채총계",
	"자본총계",
	"매출액",
	"영업이익",
	"당기순이익",
}

// ExplainLine is one summarized statement row embedded in the prompt. The
// JSON keys deliberately match the upstream payload so the model sees
// familiar field names.
type ExplainLine struct {
	AccountName      string `json:"account_nm"`
	CurrentAmount    string `json:"thstrm_amount"`
	PriorAmount      string `json:"frmtrm_amount"`
	PriorPriorAmount string `json:"bfefrmtrm_amount"`
	CurrentYear      string `json:"thstrm_year"`
	PriorYear        string `json:"frmtrm_year"`
	PriorPriorYear   string `json:"bfefrmtrm_year"`
}

// Explanation is the payload of POST /api/explain-financial.
type Explanation struct {
	Explanation string `json:"explanation"`
	RequestID   string `json:"request_id"`
	Fallback    bool   `json:"fallback"`
	Cached      bool   `json:"cached"`
}
