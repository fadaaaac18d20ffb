package service

import (
	"context"
	"sync/atomic"

	"github.com/dartview/dartview-go/internal/domain"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/dartview")

// SearchService answers company lookups. Every response carries a
// monotonically increasing sequence number so a keystroke-debounced client
// can discard answers that arrive behind a newer one.
type SearchService struct {
	directory port.CompanySearcher
	metrics   *observability.Metrics
	logger    *zap.Logger
	seq       atomic.Uint64
}

// NewSearchService creates the search service.
func NewSearchService(directory port.CompanySearcher, metrics *observability.Metrics, logger *zap.Logger) *SearchService {
	return &SearchService{
		directory: directory,
		metrics:   metrics,
		logger:    logger,
	}
}

// Search finds listed companies by name.
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	_, span := tracer.Start(ctx, "SearchService.Search")
	defer span.End()
	span.SetAttributes(attribute.String("search.query", query))

	seq := s.seq.Add(1)

	results, err := s.directory.Search(query)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.Company{}
	}
	return &domain.SearchResult{Results: results, Seq: seq}, nil
}

// Autocomplete suggests company names for a prefix of a query. A blank
// query is not an error; typing has simply not started.
func (s *SearchService) Autocomplete(ctx context.Context, query string) *domain.AutocompleteResult {
	_, span := tracer.Start(ctx, "SearchService.Autocomplete")
	defer span.End()

	seq := s.seq.Add(1)

	suggestions := s.directory.Autocomplete(query)
	if suggestions == nil {
		suggestions = []domain.Company{}
	}
	return &domain.AutocompleteResult{Suggestions: suggestions, Seq: seq}
}
