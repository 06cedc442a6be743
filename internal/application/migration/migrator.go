package migration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
)

// Kind names the entity kinds a run can migrate.
const (
	KindBrands     = "brands"
	KindCategories = "categories"
	KindProducts   = "products"
)

// Options configures a migration run. Strategy fields are validated before
// any pass begins.
type Options struct {
	// NameStrategy resolves product name matches: update, suffix, skip.
	NameStrategy migration.NameStrategy
	// NameSuffix disambiguates product names under the suffix strategy.
	NameSuffix string
	// SKUStrategy resolves duplicate-SKU rejections: suffix, blank, skip.
	SKUStrategy migration.SKUStrategy
	// SKUSuffix disambiguates SKUs under the suffix strategy.
	SKUSuffix string
	// FieldStrategy deduplicates custom fields: pair, overwrite_by_name.
	FieldStrategy migration.FieldStrategy
	// Filter pre-selects source products before reconciliation.
	Filter migration.Filter
	// Kinds selects the passes to run, in canonical order. Empty means all.
	Kinds []string
	// DryRun computes and reports decisions without writing.
	DryRun bool
}

// applyDefaults fills unset options with the default policies.
func (o *Options) applyDefaults() {
	if o.NameStrategy == "" {
		o.NameStrategy = migration.NameStrategyUpdate
	}
	if o.SKUStrategy == "" {
		o.SKUStrategy = migration.SKUStrategySuffix
	}
	if o.FieldStrategy == "" {
		o.FieldStrategy = migration.FieldStrategyPair
	}
	if o.NameSuffix == "" {
		o.NameSuffix = " (imported)"
	}
	if o.SKUSuffix == "" {
		o.SKUSuffix = "-MIGRATED"
	}
	if len(o.Kinds) == 0 {
		o.Kinds = []string{KindBrands, KindCategories, KindProducts}
	}
}

// validate rejects unknown strategy or kind values before any pass begins.
func (o *Options) validate() error {
	if !o.NameStrategy.IsValid() {
		return fmt.Errorf("%w: name strategy %q", migration.ErrUnknownStrategy, o.NameStrategy)
	}
	if !o.SKUStrategy.IsValid() {
		return fmt.Errorf("%w: sku strategy %q", migration.ErrUnknownStrategy, o.SKUStrategy)
	}
	if !o.FieldStrategy.IsValid() {
		return fmt.Errorf("%w: field strategy %q", migration.ErrUnknownStrategy, o.FieldStrategy)
	}
	for _, k := range o.Kinds {
		switch k {
		case KindBrands, KindCategories, KindProducts:
		default:
			return fmt.Errorf("migration: unknown entity kind %q", k)
		}
	}
	return nil
}

func (o *Options) runs(kind string) bool {
	for _, k := range o.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Migrator drives one migration run. Entities within a kind are processed
// sequentially: the destination's rate limiting is simplest to coordinate
// that way, and sibling entities observe in-run state (a category created
// moments ago is its sibling's parent reference).
type Migrator struct {
	src     catalog.SourceCatalog
	dst     catalog.DestinationCatalog
	opts    Options
	log     *zap.Logger
	matcher *Matcher

	brandTable    *migration.Table
	categoryTable *migration.Table
	brandNames    map[int64]string
	categoryPaths *catalog.PathResolver
	locationID    int64
}

// New creates a migrator over the two platform catalogs.
func New(src catalog.SourceCatalog, dst catalog.DestinationCatalog, opts Options, log *zap.Logger) *Migrator {
	opts.applyDefaults()
	runID := uuid.New().String()
	return &Migrator{
		src:           src,
		dst:           dst,
		opts:          opts,
		log:           log.With(zap.String("run_id", runID)),
		matcher:       NewMatcher(dst),
		brandTable:    migration.NewTable(),
		categoryTable: migration.NewTable(),
		brandNames:    make(map[int64]string),
	}
}

// Run executes the selected passes in dependency order and returns their
// summaries. Per-entity failures are counted, logged, and never abort the
// run; only setup failures (destination location, index prefetch) propagate.
func (m *Migrator) Run(ctx context.Context) ([]migration.Summary, error) {
	if err := m.opts.validate(); err != nil {
		return nil, err
	}

	// Resolve the destination stock location before any pass: without it no
	// inventory write can succeed, so failing late would waste the run.
	if !m.opts.DryRun {
		loc, err := m.dst.PrimaryLocation(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve destination location: %w", err)
		}
		m.locationID = loc
	}

	if err := m.matcher.BuildIndexes(ctx); err != nil {
		return nil, fmt.Errorf("prefetch destination indexes: %w", err)
	}

	var summaries []migration.Summary
	for _, kind := range []string{KindBrands, KindCategories, KindProducts} {
		if !m.opts.runs(kind) {
			continue
		}
		var (
			s   migration.Summary
			err error
		)
		switch kind {
		case KindBrands:
			s, err = m.migrateBrands(ctx)
		case KindCategories:
			s, err = m.migrateCategories(ctx)
		case KindProducts:
			s, err = m.migrateProducts(ctx)
		}
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
		m.log.Info("pass finished", zap.String("summary", s.String()))
	}
	return summaries, nil
}
