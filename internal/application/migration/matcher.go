// Package migration orchestrates a catalog migration run: per-kind passes,
// identity matching against destination state, and conflict resolution for
// destination-side uniqueness rejections.
package migration

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
)

// Matcher locates the destination entity equivalent to a source entity.
// It owns the destination indexes for the run: brand collections by
// normalized name, category collections by normalized path, and lazily built
// option value indexes kept in a side table keyed by option ID so destination
// entity values stay immutable.
type Matcher struct {
	dst catalog.DestinationCatalog

	brandIndex map[string]catalog.DestCollection
	pathIndex  map[string]catalog.DestCollection

	// optionValues maps a destination option ID to its normalized-label →
	// canonical-label index, built on first use and cached for the run.
	optionValues map[int64]map[string]string
}

// NewMatcher creates a matcher over the destination catalog. BuildIndexes
// must run before brand or category matching.
func NewMatcher(dst catalog.DestinationCatalog) *Matcher {
	return &Matcher{
		dst:          dst,
		brandIndex:   make(map[string]catalog.DestCollection),
		pathIndex:    make(map[string]catalog.DestCollection),
		optionValues: make(map[int64]map[string]string),
	}
}

// BuildIndexes prefetches the destination brand and category collection
// indexes. The two fetches touch disjoint state and run concurrently.
func (m *Matcher) BuildIndexes(ctx context.Context) error {
	var brands, collections []catalog.DestCollection

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		brands, err = m.dst.BrandCollections(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		collections, err = m.dst.Collections(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, b := range brands {
		m.RegisterBrand(b)
	}
	for _, c := range collections {
		m.RegisterCategory(c)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Brands
// ---------------------------------------------------------------------------

// MatchBrand finds the destination brand collection for a brand name.
func (m *Matcher) MatchBrand(name string) (catalog.DestCollection, bool) {
	col, ok := m.brandIndex[catalog.Normalize(name)]
	return col, ok
}

// RegisterBrand records a brand collection in the index, so entities created
// during this run are immediately matchable.
func (m *Matcher) RegisterBrand(col catalog.DestCollection) {
	m.brandIndex[catalog.Normalize(col.Title)] = col
}

// RefreshBrands refetches the destination brand index. Used after a
// duplicate-name rejection to rebind to the pre-existing collection.
func (m *Matcher) RefreshBrands(ctx context.Context) error {
	brands, err := m.dst.BrandCollections(ctx)
	if err != nil {
		return err
	}
	for _, b := range brands {
		m.RegisterBrand(b)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// MatchCategory finds the destination collection for a category path key.
func (m *Matcher) MatchCategory(pathKey string) (catalog.DestCollection, bool) {
	col, ok := m.pathIndex[pathKey]
	return col, ok
}

// RegisterCategory records a category collection in the path index.
func (m *Matcher) RegisterCategory(col catalog.DestCollection) {
	m.pathIndex[catalog.NormalizePath(col.Title)] = col
}

// RefreshCategories refetches the destination category index.
func (m *Matcher) RefreshCategories(ctx context.Context) error {
	collections, err := m.dst.Collections(ctx)
	if err != nil {
		return err
	}
	for _, c := range collections {
		m.RegisterCategory(c)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// MatchProduct finds the destination product equivalent to a source product
// name: an exact normalized-name probe first, then a broader keyword search
// re-filtered by exact normalized equality to guard against loose matches.
func (m *Matcher) MatchProduct(ctx context.Context, name string) (catalog.DestProduct, bool, error) {
	key := catalog.Normalize(name)

	candidates, err := m.dst.ProductsByTitle(ctx, name)
	if err != nil {
		return catalog.DestProduct{}, false, err
	}
	if p, ok := firstByKey(candidates, key); ok {
		return p, true, nil
	}

	candidates, err = m.dst.SearchProducts(ctx, name)
	if err != nil {
		return catalog.DestProduct{}, false, err
	}
	if p, ok := firstByKey(candidates, key); ok {
		return p, true, nil
	}
	return catalog.DestProduct{}, false, nil
}

func firstByKey(products []catalog.DestProduct, key string) (catalog.DestProduct, bool) {
	for _, p := range products {
		if catalog.Normalize(p.Title) == key {
			return p, true
		}
	}
	return catalog.DestProduct{}, false
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// OptionByName finds an option already present on a destination product by
// normalized display name.
func (m *Matcher) OptionByName(p catalog.DestProduct, name string) (catalog.DestOption, bool) {
	key := catalog.Normalize(name)
	for _, o := range p.Options {
		if catalog.Normalize(o.Name) == key {
			return o, true
		}
	}
	return catalog.DestOption{}, false
}

// CanonicalValue resolves a source option value label to the destination
// option's own spelling of that value, building the option's label index on
// first use.
func (m *Matcher) CanonicalValue(opt catalog.DestOption, label string) (string, bool) {
	idx, ok := m.optionValues[opt.ID]
	if !ok {
		idx = make(map[string]string, len(opt.Values))
		for _, v := range opt.Values {
			idx[catalog.Normalize(v)] = v
		}
		m.optionValues[opt.ID] = idx
	}
	canonical, ok := idx[catalog.Normalize(label)]
	return canonical, ok
}

// RegisterOptionValue records a value newly added to a destination option.
func (m *Matcher) RegisterOptionValue(opt catalog.DestOption, label string) {
	idx, ok := m.optionValues[opt.ID]
	if !ok {
		idx = make(map[string]string, len(opt.Values)+1)
		for _, v := range opt.Values {
			idx[catalog.Normalize(v)] = v
		}
		m.optionValues[opt.ID] = idx
	}
	idx[catalog.Normalize(label)] = label
}
