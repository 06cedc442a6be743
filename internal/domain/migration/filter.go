package migration

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
)

// Filter narrows the fetched source product list before reconciliation
// begins. Filters are a pre-selection concern, not reconciliation logic; an
// entity excluded here is simply never considered.
type Filter struct {
	// IDs is an allowlist of source product IDs. Empty means all.
	IDs []int64
	// NameContains keeps products whose name contains the substring,
	// case-insensitively.
	NameContains string
	// NamePattern keeps products whose name matches the regular expression.
	NamePattern string
	// AfterID drops products up to and including the given source ID, for
	// resuming an interrupted run.
	AfterID int64
	// Limit caps the number of products kept. Zero means no cap.
	Limit int
}

// IsZero returns true if the filter selects everything.
func (f Filter) IsZero() bool {
	return len(f.IDs) == 0 && f.NameContains == "" && f.NamePattern == "" &&
		f.AfterID == 0 && f.Limit == 0
}

// Apply returns the products selected by the filter, preserving source order.
func (f Filter) Apply(products []catalog.Product) ([]catalog.Product, error) {
	var pattern *regexp.Regexp
	if f.NamePattern != "" {
		var err error
		pattern, err = regexp.Compile(f.NamePattern)
		if err != nil {
			return nil, fmt.Errorf("migration: invalid name pattern: %w", err)
		}
	}

	allow := make(map[int64]bool, len(f.IDs))
	for _, id := range f.IDs {
		allow[id] = true
	}

	contains := strings.ToLower(f.NameContains)

	skipping := f.AfterID != 0
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if skipping {
			if p.ID == f.AfterID {
				skipping = false
			}
			continue
		}
		if len(allow) > 0 && !allow[p.ID] {
			continue
		}
		if contains != "" && !strings.Contains(strings.ToLower(p.Name), contains) {
			continue
		}
		if pattern != nil && !pattern.MatchString(p.Name) {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}
