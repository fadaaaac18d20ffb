package service

import (
	"context"
	"errors"
	"time"

	"github.com/dartview/dartview-go/internal/domain"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/port"
	"github.com/dartview/dartview-go/internal/present"
	"github.com/dartview/dartview-go/internal/statement"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StatementService fetches financial statements and prepares their display
// model. Statements are never cached: a disclosure can be corrected and
// refiled upstream at any time.
type StatementService struct {
	fetcher port.StatementFetcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewStatementService creates the statement service.
func NewStatementService(fetcher port.StatementFetcher, metrics *observability.Metrics, logger *zap.Logger) *StatementService {
	return &StatementService{
		fetcher: fetcher,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the raw upstream payload untouched. The visualization tab
// consumes this directly, same rows and field names as OpenDART sends.
func (s *StatementService) Fetch(ctx context.Context, corpCode, year, reportCode string) (*domain.StatementPayload, error) {
	ctx, span := tracer.Start(ctx, "StatementService.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("corp.code", corpCode))

	start := time.Now()
	payload, err := s.fetcher.FetchStatement(ctx, corpCode, year, reportCode)
	s.metrics.RecordRequestDuration("statement_fetch", time.Since(start))

	if err != nil {
		s.recordError(err)
		return nil, err
	}
	s.metrics.IncrRequest("success")
	return payload, nil
}

// View fetches a statement and builds the normalized display model for one
// consolidation scope. An empty scope defaults to consolidated.
func (s *StatementService) View(ctx context.Context, corpCode, year, reportCode, scope string) (*present.StatementView, error) {
	ctx, span := tracer.Start(ctx, "StatementService.View")
	defer span.End()

	if scope == "" {
		scope = domain.ScopeConsolidated
	}
	if scope != domain.ScopeConsolidated && scope != domain.ScopeSeparate {
		return nil, &domain.ErrValidation{Field: "fs_div", Message: "must be CFS or OFS"}
	}

	payload, err := s.Fetch(ctx, corpCode, year, reportCode)
	if err != nil {
		return nil, err
	}

	items, err := payload.Items()
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "opendart", Err: err}
	}

	normalized := statement.Normalize(items, scope)
	if len(normalized.DuplicateAccounts) > 0 {
		s.logger.Warn("duplicate key accounts in statement",
			zap.String("corp_code", corpCode),
			zap.String("year", year),
			zap.Strings("accounts", normalized.DuplicateAccounts),
		)
	}
	return present.BuildView(normalized), nil
}

func (s *StatementService) recordError(err error) {
	s.metrics.IncrRequest("error")

	var ext *domain.ErrExternalService
	var open *domain.ErrCircuitOpen
	switch {
	case errors.As(err, &ext):
		s.metrics.IncrExternalError(ext.Service)
	case errors.As(err, &open):
		s.metrics.IncrExternalError(open.Service)
	}
}
