// Package directory holds the in-memory corporation directory used for
// name search and autocomplete. The directory is loaded once at startup
// and is immutable afterwards, so lookups need no locking.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dartview/dartview-go/internal/domain"
)

const (
	searchLimit       = 10
	autocompleteLimit = 5
)

// Directory is an immutable snapshot of listed corporations.
type Directory struct {
	companies []domain.Company
}

// New builds a directory from companies that already passed the listing
// filter.
func New(companies []domain.Company) *Directory {
	return &Directory{companies: companies}
}

// Load reads a JSON array of companies from path and keeps only listed
// entries.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}

	var companies []domain.Company
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, fmt.Errorf("parse directory file %s: %w", path, err)
	}

	listed := make([]domain.Company, 0, len(companies))
	for _, c := range companies {
		if c.Listed() {
			listed = append(listed, c)
		}
	}
	return New(listed), nil
}

// Search returns companies whose name contains the query,
// case-insensitively, capped at ten results in directory order.
func (d *Directory) Search(query string) ([]domain.Company, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, &domain.ErrValidation{Field: "query", Message: "query must not be blank"}
	}

	var results []domain.Company
	for _, c := range d.companies {
		if strings.Contains(strings.ToLower(c.CorpName), q) {
			results = append(results, c)
			if len(results) == searchLimit {
				break
			}
		}
	}
	return results, nil
}

// Autocomplete returns up to five suggestions for a query. A blank query
// yields no suggestions rather than an error so the client can call it on
// every keystroke.
func (d *Directory) Autocomplete(query string) []domain.Company {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var suggestions []domain.Company
	for _, c := range d.companies {
		if !strings.Contains(strings.ToLower(c.CorpName), q) {
			continue
		}
		suggestions = append(suggestions, c)
		if len(suggestions) == autocompleteLimit {
			break
		}
	}
	return suggestions
}

// Len reports how many listed companies are loaded.
func (d *Directory) Len() int {
	return len(d.companies)
}
