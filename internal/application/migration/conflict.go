package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
)

// maxSKUAttempts bounds suffix retries for one variant, counting the
// original create.
const maxSKUAttempts = 10

// variantOutcome reports how a variant create was resolved.
type variantOutcome int

const (
	variantCreated variantOutcome = iota
	variantRebound
	variantSkipped
)

// ensureOption resolves a source option against a destination product:
// reuse when an option with the same normalized name is already present,
// create otherwise. A create rejected because the destination reports the
// name already used is a benign race, not an error: the product's options
// are refetched and the pre-existing option is bound instead.
func (m *Migrator) ensureOption(ctx context.Context, product catalog.DestProduct, src catalog.Option) (catalog.DestOption, error) {
	if opt, ok := m.matcher.OptionByName(product, src.Name); ok {
		return opt, nil
	}

	in := catalog.OptionInput{Name: src.Name}
	for _, v := range src.Values {
		in.Values = append(in.Values, v.Label)
	}

	opt, err := m.dst.AddProductOption(ctx, product.ID, in)
	if err == nil {
		return opt, nil
	}
	if !errors.Is(err, migration.ErrValueAlreadyUsed) {
		return catalog.DestOption{}, err
	}

	// The option appeared on the destination between the probe and the
	// write. Refetch and rebind.
	refreshed, gerr := m.dst.GetProduct(ctx, product.ID)
	if gerr != nil {
		return catalog.DestOption{}, gerr
	}
	if opt, ok := m.matcher.OptionByName(refreshed, src.Name); ok {
		return opt, nil
	}
	return catalog.DestOption{}, fmt.Errorf("%w: option %q reported in use but absent on refetch",
		migration.ErrUnresolvedDependency, src.Name)
}

// createVariantResolvingSKU attempts a variant create, applying the
// configured SKU conflict policy on duplicate-SKU rejections:
//
//   - skip: the variant is abandoned and counted as skipped;
//   - blank: the identical create is retried with the SKU omitted;
//   - suffix: the SKU is retried as <sku><suffix>, then <sku><suffix>-2,
//     -3, ... up to a bounded attempt count, after which the variant is
//     abandoned and counted as failed.
//
// A rejection reporting the option combination as already present binds the
// pre-existing destination variant and is treated as success.
func (m *Migrator) createVariantResolvingSKU(ctx context.Context, productID int64, in catalog.VariantInput) (catalog.DestVariant, variantOutcome, error) {
	attempt := in
	for n := 1; n <= maxSKUAttempts; n++ {
		created, err := m.dst.CreateVariant(ctx, productID, attempt)
		if err == nil {
			return created, variantCreated, nil
		}

		if errors.Is(err, migration.ErrValueAlreadyUsed) {
			bound, berr := m.rebindVariant(ctx, productID, in)
			if berr != nil {
				return catalog.DestVariant{}, variantSkipped, berr
			}
			return bound, variantRebound, nil
		}

		if !errors.Is(err, migration.ErrDuplicateSKU) {
			return catalog.DestVariant{}, variantSkipped, err
		}

		switch m.opts.SKUStrategy {
		case migration.SKUStrategySkip:
			m.log.Info("variant sku in use, skipping",
				zap.String("sku", in.SKU))
			return catalog.DestVariant{}, variantSkipped, nil
		case migration.SKUStrategyBlank:
			m.log.Info("variant sku in use, retrying without sku",
				zap.String("sku", in.SKU))
			attempt.SKU = ""
		default:
			next := in.SKU + m.opts.SKUSuffix
			if n > 1 {
				next = fmt.Sprintf("%s%s-%d", in.SKU, m.opts.SKUSuffix, n)
			}
			m.log.Info("variant sku in use, retrying with suffix",
				zap.String("sku", in.SKU),
				zap.String("next", next))
			attempt.SKU = next
		}
	}

	return catalog.DestVariant{}, variantSkipped,
		fmt.Errorf("%w: sku %q still in use after %d attempts",
			migration.ErrVariantAbandoned, in.SKU, maxSKUAttempts)
}

// rebindVariant refetches a destination product and binds the variant whose
// option values match the attempted create.
func (m *Migrator) rebindVariant(ctx context.Context, productID int64, in catalog.VariantInput) (catalog.DestVariant, error) {
	product, err := m.dst.GetProduct(ctx, productID)
	if err != nil {
		return catalog.DestVariant{}, err
	}
	for _, v := range product.Variants {
		if sameOptionValues(v.Options, in.Options) {
			return v, nil
		}
	}
	return catalog.DestVariant{}, fmt.Errorf("%w: variant values reported in use but absent on refetch",
		migration.ErrUnresolvedDependency)
}

func sameOptionValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if catalog.Normalize(a[i]) != catalog.Normalize(b[i]) {
			return false
		}
	}
	return true
}

// resolveNameConflict handles a duplicate-name rejection on a product
// create according to the configured name strategy. For suffix the caller
// already disambiguated the title, so a second rejection means the suffixed
// name itself collides and the product fails; for update and skip the
// pre-existing product is refetched and bound.
func (m *Migrator) resolveNameConflict(ctx context.Context, name string) (catalog.DestProduct, error) {
	existing, found, err := m.matcher.MatchProduct(ctx, name)
	if err != nil {
		return catalog.DestProduct{}, err
	}
	if !found {
		return catalog.DestProduct{}, fmt.Errorf("%w: name %q reported in use but absent on refetch",
			migration.ErrUnresolvedDependency, name)
	}
	return existing, nil
}
