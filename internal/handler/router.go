package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dartview/dartview-go/internal/domain"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/port"
	"github.com/dartview/dartview-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// The /api routes follow the contract the viewer front end was built
// against.
func NewRouter(
	searchSvc *service.SearchService,
	stmtSvc *service.StatementService,
	explainSvc *service.ExplainService,
	dir port.CompanySearcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(dir))
	r.Get("/readyz", readyzHandler(dir))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", searchHandler(searchSvc, logger))
		r.Get("/autocomplete", autocompleteHandler(searchSvc))
		r.Get("/financial", financialHandler(stmtSvc, logger))
		r.Get("/statement", statementHandler(stmtSvc, logger))
		r.Post("/explain-financial", explainHandler(explainSvc, logger))
		r.Get("/metrics", usageMetricsHandler(metrics))
	})

	return r
}

// searchHandler serves GET /api/search?query=...
func searchHandler(svc *service.SearchService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/search")
		defer span.End()

		query := r.URL.Query().Get("query")
		span.SetAttributes(attribute.String("search.query", query))

		result, err := svc.Search(ctx, query)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// autocompleteHandler serves GET /api/autocomplete?query=...
// A blank query is a normal empty answer, never an error.
func autocompleteHandler(svc *service.SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/autocomplete")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Autocomplete(ctx, r.URL.Query().Get("query")))
	}
}

// financialHandler serves GET /api/financial: the raw upstream payload,
// untouched, for the visualization tab.
func financialHandler(svc *service.StatementService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/financial")
		defer span.End()

		q := r.URL.Query()
		payload, err := svc.Fetch(ctx, q.Get("corp_code"), q.Get("bsns_year"), q.Get("reprt_code"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

// statementHandler serves GET /api/statement: the server-side normalized
// display model with tables, charts and period labels prebuilt.
func statementHandler(svc *service.StatementService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/statement")
		defer span.End()

		q := r.URL.Query()
		view, err := svc.View(ctx, q.Get("corp_code"), q.Get("bsns_year"), q.Get("reprt_code"), q.Get("fs_div"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

type explainRequest struct {
	CompanyName   string            `json:"companyName"`
	FinancialData []domain.LineItem `json:"financialData"`
}

// explainHandler serves POST /api/explain-financial.
func explainHandler(svc *service.ExplainService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/explain-financial")
		defer span.End()

		var req explainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("company.name", req.CompanyName))

		result, err := svc.Explain(ctx, req.CompanyName, req.FinancialData)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// usageMetricsHandler serves GET /api/metrics, a JSON usage summary.
// Prometheus exposition stays on /metrics.
func usageMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.UsageSnapshot())
	}
}

func healthzHandler(dir port.CompanySearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"companies": dir.Len(),
			"time":      time.Now().Format(time.RFC3339),
		})
	}
}

// readyzHandler reports ready only once the corporation directory is
// loaded; search is useless against an empty directory.
func readyzHandler(dir port.CompanySearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dir.Len() == 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no directory loaded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
