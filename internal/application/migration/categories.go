package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
)

// migrateCategories reconciles the source category tree against destination
// collections titled with slash-joined paths. Categories are processed in
// parent-before-child order: a child's path embeds its parent's resolved
// name chain, and a parent that failed must fail its children rather than
// let them create orphaned paths.
func (m *Migrator) migrateCategories(ctx context.Context) (migration.Summary, error) {
	summary := migration.Summary{Kind: KindCategories}

	categories, err := m.src.Categories(ctx)
	if err != nil {
		return summary, err
	}
	m.categoryPaths = catalog.NewPathResolver(categories)

	for _, category := range catalog.SortParentsFirst(categories) {
		decision, err := m.reconcileCategory(ctx, category)
		if err != nil {
			summary.Failed++
			m.log.Warn("category failed",
				zap.Int64("source_id", category.ID),
				zap.String("path", m.categoryPaths.Path(category.ID)),
				zap.Error(err))
			continue
		}
		summary.Record(decision)
		m.log.Info("category reconciled",
			zap.Int64("source_id", category.ID),
			zap.String("path", m.categoryPaths.Path(category.ID)),
			zap.String("decision", string(decision)))
	}
	return summary, nil
}

// reconcileCategory resolves one category against the destination path
// index. The parent must already be resolved; parents created earlier in
// this same pass are visible through the mapping table, not a stale index.
func (m *Migrator) reconcileCategory(ctx context.Context, category catalog.Category) (migration.Decision, error) {
	if !category.IsRoot() && category.ParentID != category.ID {
		if _, ok := m.categoryTable.Get(category.ParentID); !ok {
			return "", fmt.Errorf("%w: parent category %d is unresolved",
				migration.ErrUnresolvedDependency, category.ParentID)
		}
	}

	key := m.categoryPaths.Key(category.ID)
	if existing, ok := m.matcher.MatchCategory(key); ok {
		m.categoryTable.Put(category.ID, existing.ID)
		return migration.DecisionReuse, nil
	}

	if m.opts.DryRun {
		// Children still need to see their parent as resolved; a zero
		// placeholder keeps the dependency check honest without writing.
		m.categoryTable.Put(category.ID, 0)
		return migration.DecisionCreate, nil
	}

	created, err := m.dst.CreateCollection(ctx, catalog.CollectionInput{
		Title: m.categoryPaths.Path(category.ID),
	})
	if err == nil {
		m.matcher.RegisterCategory(created)
		m.categoryTable.Put(category.ID, created.ID)
		return migration.DecisionCreate, nil
	}
	if !errors.Is(err, migration.ErrDuplicateName) && !errors.Is(err, migration.ErrValueAlreadyUsed) {
		return "", err
	}

	// The collection appeared since the index was built. Refetch and bind.
	if err := m.matcher.RefreshCategories(ctx); err != nil {
		return "", err
	}
	existing, ok := m.matcher.MatchCategory(key)
	if !ok {
		return "", fmt.Errorf("%w: path %q reported in use but absent on refetch",
			migration.ErrUnresolvedDependency, m.categoryPaths.Path(category.ID))
	}
	m.categoryTable.Put(category.ID, existing.ID)
	return migration.DecisionReuse, nil
}

// resolveCategoryRefs fills the category table by matching only, for runs
// where the product pass is selected without the category pass. Unmatched
// categories stay unmapped; product assignments to them are skipped.
func (m *Migrator) resolveCategoryRefs(ctx context.Context) error {
	categories, err := m.src.Categories(ctx)
	if err != nil {
		return err
	}
	m.categoryPaths = catalog.NewPathResolver(categories)
	for _, category := range categories {
		if existing, ok := m.matcher.MatchCategory(m.categoryPaths.Key(category.ID)); ok {
			m.categoryTable.Put(category.ID, existing.ID)
		}
	}
	return nil
}
