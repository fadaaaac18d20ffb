// Package port defines the interfaces between the service layer and its
// collaborators. Services accept these interfaces; infra packages return
// concrete implementations.
package port

import (
	"context"

	"github.com/dartview/dartview-go/internal/domain"
)

// CompanySearcher answers name lookups against the corporation directory.
type CompanySearcher interface {
	// Search returns listed companies whose name contains the query,
	// capped for display. A blank query is a validation error.
	Search(query string) ([]domain.Company, error)

	// Autocomplete returns suggestions for a partial query, capped
	// tighter than Search. A blank query yields no suggestions.
	Autocomplete(query string) []domain.Company

	// Len reports how many companies are loaded.
	Len() int
}

// StatementFetcher retrieves a raw financial statement payload from the
// disclosure API.
type StatementFetcher interface {
	FetchStatement(ctx context.Context, corpCode, year, reportCode string) (*domain.StatementPayload, error)
}

// ExplanationGenerator produces a natural-language explanation for a
// prepared summary prompt.
type ExplanationGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Cache is a read-through cache for computed values.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
}
