package migration

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
)

// migrateBrands reconciles source brands against destination brand
// collections. Brands are reused on match and never updated.
func (m *Migrator) migrateBrands(ctx context.Context) (migration.Summary, error) {
	summary := migration.Summary{Kind: KindBrands}

	brands, err := m.src.Brands(ctx)
	if err != nil {
		return summary, err
	}

	for _, brand := range brands {
		m.brandNames[brand.ID] = brand.Name

		decision, err := m.reconcileBrand(ctx, brand)
		if err != nil {
			summary.Failed++
			m.log.Warn("brand failed",
				zap.Int64("source_id", brand.ID),
				zap.String("name", brand.Name),
				zap.Error(err))
			continue
		}
		summary.Record(decision)
		m.log.Info("brand reconciled",
			zap.Int64("source_id", brand.ID),
			zap.String("name", brand.Name),
			zap.String("decision", string(decision)))
	}
	return summary, nil
}

// reconcileBrand resolves one brand: reuse the matched collection or create
// a vendor-rule collection. A duplicate-name rejection means the collection
// appeared since the index was built; the index is refreshed and the
// pre-existing collection bound.
func (m *Migrator) reconcileBrand(ctx context.Context, brand catalog.Brand) (migration.Decision, error) {
	if existing, ok := m.matcher.MatchBrand(brand.Name); ok {
		m.brandTable.Put(brand.ID, existing.ID)
		return migration.DecisionReuse, nil
	}

	if m.opts.DryRun {
		return migration.DecisionCreate, nil
	}

	created, err := m.dst.CreateCollection(ctx, catalog.CollectionInput{
		Title:      brand.Name,
		VendorRule: brand.Name,
	})
	if err == nil {
		m.matcher.RegisterBrand(created)
		m.brandTable.Put(brand.ID, created.ID)
		return migration.DecisionCreate, nil
	}
	if !errors.Is(err, migration.ErrDuplicateName) && !errors.Is(err, migration.ErrValueAlreadyUsed) {
		return "", err
	}

	if err := m.matcher.RefreshBrands(ctx); err != nil {
		return "", err
	}
	existing, ok := m.matcher.MatchBrand(brand.Name)
	if !ok {
		return "", errors.Join(migration.ErrUnresolvedDependency, err)
	}
	m.brandTable.Put(brand.ID, existing.ID)
	return migration.DecisionReuse, nil
}
