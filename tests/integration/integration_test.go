package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dartview/dartview-go/internal/directory"
	"github.com/dartview/dartview-go/internal/domain"
	"github.com/dartview/dartview-go/internal/handler"
	"github.com/dartview/dartview-go/internal/infra/cache"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/infra/opendart"
	"github.com/dartview/dartview-go/internal/infra/resilience"
	"github.com/dartview/dartview-go/internal/service"

	"go.uber.org/zap"
)

type scriptedGenerator struct {
	calls int
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if !strings.Contains(prompt, "자산총계") {
		return "", nil
	}
	return "<h3>재무 분석</h3><p>자산과 매출이 꾸준히 늘고 있습니다.</p>", nil
}

const statementJSON = `{"status":"000","message":"정상","list":[
	{"account_nm":"자산총계","sj_div":"BS","fs_div":"CFS",
	 "thstrm_amount":"1,200,000,000,000","frmtrm_amount":"1,100,000,000,000","bfefrmtrm_amount":"1,000,000,000,000",
	 "thstrm_dt":"2023.12.31 현재","frmtrm_dt":"2022.12.31 현재","bfefrmtrm_dt":"2021.12.31 현재"},
	{"account_nm":"유동자산","sj_div":"BS","fs_div":"CFS",
	 "thstrm_amount":"700,000,000,000","frmtrm_amount":"650,000,000,000","bfefrmtrm_amount":"600,000,000,000",
	 "thstrm_dt":"2023.12.31 현재","frmtrm_dt":"2022.12.31 현재","bfefrmtrm_dt":"2021.12.31 현재"},
	{"account_nm":"부채총계","sj_div":"BS","fs_div":"CFS",
	 "thstrm_amount":"400,000,000,000","frmtrm_amount":"380,000,000,000","bfefrmtrm_amount":"360,000,000,000",
	 "thstrm_dt":"2023.12.31 현재","frmtrm_dt":"2022.12.31 현재","bfefrmtrm_dt":"2021.12.31 현재"},
	{"account_nm":"자본총계","sj_div":"BS","fs_div":"CFS",
	 "thstrm_amount":"800,000,000,000","frmtrm_amount":"720,000,000,000","bfefrmtrm_amount":"640,000,000,000",
	 "thstrm_dt":"2023.12.31 현재","frmtrm_dt":"2022.12.31 현재","bfefrmtrm_dt":"2021.12.31 현재"},
	{"account_nm":"매출액","sj_div":"IS","fs_div":"CFS",
	 "thstrm_amount":"2,500,000,000,000","frmtrm_amount":"2,300,000,000,000","bfefrmtrm_amount":"2,100,000,000,000",
	 "thstrm_dt":"2023.01.01 ~ 2023.12.31","frmtrm_dt":"2022.01.01 ~ 2022.12.31","bfefrmtrm_dt":"2021.01.01 ~ 2021.12.31"},
	{"account_nm":"영업이익","sj_div":"IS","fs_div":"CFS",
	 "thstrm_amount":"300,000,000,000","frmtrm_amount":"280,000,000,000","bfefrmtrm_amount":"260,000,000,000",
	 "thstrm_dt":"2023.01.01 ~ 2023.12.31","frmtrm_dt":"2022.01.01 ~ 2022.12.31","bfefrmtrm_dt":"2021.01.01 ~ 2021.12.31"},
	{"account_nm":"당기순이익","sj_div":"IS","fs_div":"CFS",
	 "thstrm_amount":"220,000,000,000","frmtrm_amount":"200,000,000,000","bfefrmtrm_amount":"180,000,000,000",
	 "thstrm_dt":"2023.01.01 ~ 2023.12.31","frmtrm_dt":"2022.01.01 ~ 2022.12.31","bfefrmtrm_dt":"2021.01.01 ~ 2021.12.31"}
]}`

// TestIntegration_FullFlow drives the whole stack against a mock OpenDART
// server: search, raw fetch, normalized view, explanation.
func TestIntegration_FullFlow(t *testing.T) {
	var dartHits int
	dartServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dartHits++
		if r.URL.Path != "/fnlttSinglAcnt.json" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("crtfc_key") != "integration-key" {
			w.Write([]byte(`{"status":"010","message":"등록되지 않은 키입니다."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(statementJSON))
	}))
	defer dartServer.Close()

	dir := directory.New([]domain.Company{
		{CorpCode: "00126380", CorpName: "삼성전자", StockCode: "005930"},
		{CorpCode: "00164742", CorpName: "삼성물산", StockCode: "028260"},
	})

	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	resilienceCfg := resilience.Config{MaxRetries: 2, InitialBackoff: 5 * time.Millisecond}
	cb := resilience.NewCircuitBreaker("opendart-integration")

	dartClient := opendart.NewClient(dartServer.Client(), dartServer.URL, "integration-key", cb, resilienceCfg)
	generator := &scriptedGenerator{}

	searchSvc := service.NewSearchService(dir, metrics, logger)
	stmtSvc := service.NewStatementService(dartClient, metrics, logger)
	explainSvc := service.NewExplainService(generator, cache.New[string](time.Minute), metrics, logger)

	router := handler.NewRouter(searchSvc, stmtSvc, explainSvc, dir, metrics, logger)
	server := httptest.NewServer(router)
	defer server.Close()

	// --- Search for the company ---
	resp, err := http.Get(server.URL + "/api/search?query=" + "%EC%82%BC%EC%84%B1%EC%A0%84%EC%9E%90")
	if err != nil {
		t.Fatal(err)
	}
	var searchResult domain.SearchResult
	decodeBody(t, resp, &searchResult)
	if len(searchResult.Results) != 1 {
		t.Fatalf("expected one search hit, got %+v", searchResult.Results)
	}
	corpCode := searchResult.Results[0].CorpCode

	// --- Raw statement passthrough ---
	resp, err = http.Get(server.URL + "/api/financial?corp_code=" + corpCode + "&bsns_year=2023&reprt_code=11011")
	if err != nil {
		t.Fatal(err)
	}
	var payload domain.StatementPayload
	decodeBody(t, resp, &payload)
	rows, err := payload.Items()
	if err != nil {
		t.Fatal(err)
	}
	if payload.Status != "000" || len(rows) != 7 {
		t.Fatalf("unexpected raw payload: status=%s rows=%d", payload.Status, len(rows))
	}

	// --- Normalized view ---
	resp, err = http.Get(server.URL + "/api/statement?corp_code=" + corpCode + "&bsns_year=2023&reprt_code=11011&fs_div=CFS")
	if err != nil {
		t.Fatal(err)
	}
	var view struct {
		Periods struct {
			Current string `json:"current"`
		} `json:"periods"`
		BalanceSheetTable []struct {
			Account string    `json:"account"`
			Cells   [3]string `json:"cells"`
		} `json:"balance_sheet_table"`
		EquationChart struct {
			Datasets []struct {
				Label string   `json:"label"`
				Data  [3]int64 `json:"data"`
			} `json:"datasets"`
		} `json:"equation_chart"`
	}
	decodeBody(t, resp, &view)
	if view.Periods.Current != "2023" {
		t.Errorf("unexpected current period %q", view.Periods.Current)
	}
	if len(view.BalanceSheetTable) != 7 {
		t.Fatalf("expected 7 balance sheet rows, got %d", len(view.BalanceSheetTable))
	}
	if view.BalanceSheetTable[0].Cells[0] != "1조 2,000억" {
		t.Errorf("total assets cell = %q, want 1조 2,000억", view.BalanceSheetTable[0].Cells[0])
	}
	// non-current assets were missing upstream and must be derived
	var nonCurrent [3]int64
	for _, ds := range view.EquationChart.Datasets {
		if ds.Label == "비유동자산" {
			nonCurrent = ds.Data
		}
	}
	if nonCurrent[0] != 500_000_000_000 {
		t.Errorf("derived non-current assets = %d, want 500000000000", nonCurrent[0])
	}

	// --- Explanation (twice: second hit must come from cache) ---
	explainBody := `{"companyName":"삼성전자","financialData":` + extractList(t) + `}`
	for i := 0; i < 2; i++ {
		resp, err = http.Post(server.URL+"/api/explain-financial", "application/json", strings.NewReader(explainBody))
		if err != nil {
			t.Fatal(err)
		}
		var explanation domain.Explanation
		decodeBody(t, resp, &explanation)
		if explanation.Fallback {
			t.Fatalf("explanation unexpectedly fell back on attempt %d", i+1)
		}
		if i == 1 && !explanation.Cached {
			t.Error("second identical explanation must be served from cache")
		}
	}
	if generator.calls != 1 {
		t.Errorf("expected one model call, got %d", generator.calls)
	}

	if dartHits != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", dartHits)
	}
}

// TestIntegration_UpstreamRejection covers the business-error path: the
// disclosure API answers with its own error envelope and the server relays
// code and message without retrying.
func TestIntegration_UpstreamRejection(t *testing.T) {
	var dartHits int
	dartServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dartHits++
		w.Write([]byte(`{"status":"013","message":"조회된 데이타가 없습니다."}`))
	}))
	defer dartServer.Close()

	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	dir := directory.New(nil)
	cb := resilience.NewCircuitBreaker("opendart-rejection")
	dartClient := opendart.NewClient(dartServer.Client(), dartServer.URL, "k", cb,
		resilience.Config{MaxRetries: 3, InitialBackoff: 5 * time.Millisecond})

	router := handler.NewRouter(
		service.NewSearchService(dir, metrics, logger),
		service.NewStatementService(dartClient, metrics, logger),
		service.NewExplainService(nil, cache.New[string](time.Minute), metrics, logger),
		dir,
		metrics,
		logger,
	)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/financial?corp_code=00126380&bsns_year=2023&reprt_code=11011")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	decodeBody(t, resp, &body)
	if body.Code != "013" || body.Error != "조회된 데이타가 없습니다." {
		t.Errorf("upstream envelope not relayed: %+v", body)
	}
	if dartHits != 1 {
		t.Errorf("business errors must not be retried, upstream saw %d requests", dartHits)
	}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func extractList(t *testing.T) string {
	t.Helper()
	var payload struct {
		List json.RawMessage `json:"list"`
	}
	if err := json.Unmarshal([]byte(statementJSON), &payload); err != nil {
		t.Fatal(err)
	}
	return string(payload.List)
}
