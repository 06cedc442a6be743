package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
)

// migrateProducts reconciles source products, including options, variants,
// custom fields, images, collection membership and inventory. A failure in
// one product never aborts its siblings.
func (m *Migrator) migrateProducts(ctx context.Context) (migration.Summary, error) {
	summary := migration.Summary{Kind: KindProducts}

	// Dependent passes may have been deselected; resolve their mapping
	// tables by matching only, so product payloads still bind to whatever
	// already exists on the destination.
	if len(m.brandNames) == 0 {
		if err := m.resolveBrandRefs(ctx); err != nil {
			return summary, err
		}
	}
	if m.categoryPaths == nil {
		if err := m.resolveCategoryRefs(ctx); err != nil {
			return summary, err
		}
	}

	products, err := m.src.Products(ctx)
	if err != nil {
		return summary, err
	}
	products, err = m.opts.Filter.Apply(products)
	if err != nil {
		return summary, err
	}

	for _, product := range products {
		decision, err := m.reconcileProduct(ctx, product)
		if err != nil {
			summary.Failed++
			m.log.Warn("product failed",
				zap.Int64("source_id", product.ID),
				zap.String("name", product.Name),
				zap.Error(err))
			continue
		}
		summary.Record(decision)
		m.log.Info("product reconciled",
			zap.Int64("source_id", product.ID),
			zap.String("name", product.Name),
			zap.String("decision", string(decision)))
	}
	return summary, nil
}

// resolveBrandRefs loads source brand names for vendor strings when the
// brand pass was deselected.
func (m *Migrator) resolveBrandRefs(ctx context.Context) error {
	brands, err := m.src.Brands(ctx)
	if err != nil {
		return err
	}
	for _, brand := range brands {
		m.brandNames[brand.ID] = brand.Name
		if existing, ok := m.matcher.MatchBrand(brand.Name); ok {
			m.brandTable.Put(brand.ID, existing.ID)
		}
	}
	return nil
}

// reconcileProduct resolves one product end to end: decision, product
// write, then sub-resources against the resolved destination product.
func (m *Migrator) reconcileProduct(ctx context.Context, product catalog.Product) (migration.Decision, error) {
	matched, found, err := m.matcher.MatchProduct(ctx, product.Name)
	if err != nil {
		return "", err
	}

	decision, err := migration.DecideProduct(found, m.opts.NameStrategy)
	if err != nil {
		return "", err
	}
	if m.opts.DryRun {
		return decision, nil
	}

	// The tracking mode must be derived before the payload is built:
	// flipping it after creation has different side effects than setting it
	// at creation time.
	tracking := product.DerivedTracking()

	var dest catalog.DestProduct
	switch decision {
	case migration.DecisionSkip:
		return decision, nil

	case migration.DecisionUpdate:
		dest, err = m.dst.UpdateProduct(ctx, matched.ID, m.metadataInput(product, product.Name))
		if err != nil {
			return "", err
		}
		// The update response carries no sub-resources worth trusting for
		// matching; keep the matched snapshot's options and variants.
		dest.Options = matched.Options
		dest.Variants = matched.Variants

	case migration.DecisionCreate, migration.DecisionCreateSuffixed:
		title := product.Name
		if decision == migration.DecisionCreateSuffixed {
			title = product.Name + m.opts.NameSuffix
		}
		var skipped bool
		dest, skipped, err = m.createProduct(ctx, product, title, tracking)
		if err != nil {
			return "", err
		}
		if skipped {
			return migration.DecisionSkip, nil
		}
	}

	if err := m.syncSubResources(ctx, product, dest, tracking, decision); err != nil {
		return "", err
	}
	return decision, nil
}

// createProduct creates the destination product with its options and base
// variant. Real variants are created one at a time afterwards so SKU
// conflicts resolve per variant, not per product. A duplicate-name rejection
// under the update strategy rebinds to the pre-existing product. A
// duplicate-SKU rejection on the base variant follows the configured SKU
// policy: blank and suffix retry the create, skip reports the whole product
// skipped since the base variant is the product.
func (m *Migrator) createProduct(ctx context.Context, product catalog.Product, title string, tracking catalog.InventoryTracking) (catalog.DestProduct, bool, error) {
	in := m.metadataInput(product, title)

	if tracking == catalog.TrackingVariant {
		for _, opt := range product.Options {
			oi := catalog.OptionInput{Name: opt.Name}
			for _, v := range opt.Values {
				oi.Values = append(oi.Values, v.Label)
			}
			in.Options = append(in.Options, oi)
		}
	} else {
		// No real variants: a single base variant carries the product's SKU
		// and price.
		in.Variants = []catalog.VariantInput{{
			SKU:            product.SKU,
			Price:          product.Price,
			TrackInventory: tracking == catalog.TrackingProduct,
		}}
	}

	attempt := in
	for n := 1; n <= maxSKUAttempts; n++ {
		dest, err := m.dst.CreateProduct(ctx, attempt)
		if err == nil {
			return dest, false, nil
		}

		if errors.Is(err, migration.ErrDuplicateSKU) && len(attempt.Variants) > 0 {
			// Only the base variant carries a SKU in the create payload.
			base := attempt.Variants[0]
			switch m.opts.SKUStrategy {
			case migration.SKUStrategySkip:
				m.log.Info("product sku in use, skipping product",
					zap.String("name", product.Name),
					zap.String("sku", product.SKU))
				return catalog.DestProduct{}, true, nil
			case migration.SKUStrategyBlank:
				m.log.Info("product sku in use, retrying without sku",
					zap.String("name", product.Name),
					zap.String("sku", product.SKU))
				base.SKU = ""
			default:
				next := product.SKU + m.opts.SKUSuffix
				if n > 1 {
					next = fmt.Sprintf("%s%s-%d", product.SKU, m.opts.SKUSuffix, n)
				}
				m.log.Info("product sku in use, retrying with suffix",
					zap.String("sku", product.SKU),
					zap.String("next", next))
				base.SKU = next
			}
			attempt.Variants = []catalog.VariantInput{base}
			continue
		}

		if !errors.Is(err, migration.ErrDuplicateName) {
			return catalog.DestProduct{}, false, err
		}

		switch m.opts.NameStrategy {
		case migration.NameStrategySuffix:
			// The disambiguated name itself collides; give up on this product.
			return catalog.DestProduct{}, false, fmt.Errorf("suffixed title %q: %w", title, err)
		default:
			// The product appeared since the probe. Bind and update it instead.
			existing, rerr := m.resolveNameConflict(ctx, product.Name)
			if rerr != nil {
				return catalog.DestProduct{}, false, rerr
			}
			updated, uerr := m.dst.UpdateProduct(ctx, existing.ID, m.metadataInput(product, product.Name))
			if uerr != nil {
				return catalog.DestProduct{}, false, uerr
			}
			updated.Options = existing.Options
			updated.Variants = existing.Variants
			return updated, false, nil
		}
	}

	return catalog.DestProduct{}, false,
		fmt.Errorf("%w: sku %q still in use after %d attempts",
			migration.ErrVariantAbandoned, product.SKU, maxSKUAttempts)
}

// metadataInput builds the product payload without options or variants.
func (m *Migrator) metadataInput(product catalog.Product, title string) catalog.ProductInput {
	status := "active"
	if !product.Visible {
		status = "draft"
	}
	return catalog.ProductInput{
		Title:    title,
		Vendor:   m.brandNames[product.BrandID],
		BodyHTML: product.Description,
		Status:   status,
	}
}

// syncSubResources brings options, variants, custom fields, images,
// collection membership and inventory of the resolved destination product in
// line with the source product.
func (m *Migrator) syncSubResources(ctx context.Context, product catalog.Product, dest catalog.DestProduct, tracking catalog.InventoryTracking, decision migration.Decision) error {
	if tracking == catalog.TrackingVariant {
		options, err := m.syncOptions(ctx, product, dest)
		if err != nil {
			return err
		}
		dest, err = m.syncVariants(ctx, product, dest, options)
		if err != nil {
			return err
		}
	}

	if err := m.syncCustomFields(ctx, product, dest.ID); err != nil {
		return err
	}

	// Images only accompany a fresh product: re-posting source URLs onto a
	// matched product would duplicate them.
	if decision == migration.DecisionCreate || decision == migration.DecisionCreateSuffixed {
		for _, img := range product.Images {
			if err := m.dst.CreateImage(ctx, dest.ID, catalog.ImageInput{
				Src:      img.URL,
				Alt:      img.Alt,
				Position: img.Position,
			}); err != nil {
				m.log.Warn("image failed",
					zap.Int64("product_id", dest.ID),
					zap.String("src", img.URL),
					zap.Error(err))
			}
		}
	}

	for _, categoryID := range product.CategoryIDs {
		collectionID, ok := m.categoryTable.Get(categoryID)
		if !ok {
			m.log.Warn("category unmapped, assignment skipped",
				zap.Int64("product_id", dest.ID),
				zap.Int64("source_category_id", categoryID))
			continue
		}
		if err := m.dst.AssignProductToCollection(ctx, dest.ID, collectionID); err != nil {
			m.log.Warn("collection assignment failed",
				zap.Int64("product_id", dest.ID),
				zap.Int64("collection_id", collectionID),
				zap.Error(err))
		}
	}

	m.syncInventory(ctx, product, dest, tracking)
	return nil
}

// syncOptions ensures every source option exists on the destination product,
// returning source option ID → destination option for variant building.
func (m *Migrator) syncOptions(ctx context.Context, product catalog.Product, dest catalog.DestProduct) (map[int64]catalog.DestOption, error) {
	options := make(map[int64]catalog.DestOption, len(product.Options))
	for _, opt := range product.Options {
		resolved, err := m.ensureOption(ctx, dest, opt)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", opt.Name, err)
		}
		options[opt.ID] = resolved
	}
	return options, nil
}

// syncVariants reconciles source variants by SKU against the destination
// product. An unmatched variant is created with SKU conflict resolution; a
// variant whose selections cannot be resolved is abandoned while its
// siblings proceed.
func (m *Migrator) syncVariants(ctx context.Context, product catalog.Product, dest catalog.DestProduct, options map[int64]catalog.DestOption) (catalog.DestProduct, error) {
	for _, variant := range product.RealVariants() {
		if existing, ok := dest.VariantBySKU(variant.SKU); ok {
			m.log.Debug("variant reused",
				zap.Int64("product_id", dest.ID),
				zap.String("sku", variant.SKU),
				zap.Int64("variant_id", existing.ID))
			continue
		}

		in, err := m.variantInput(variant, options)
		if err != nil {
			m.log.Warn("variant abandoned",
				zap.Int64("product_id", dest.ID),
				zap.String("sku", variant.SKU),
				zap.Error(err))
			continue
		}

		created, outcome, err := m.createVariantResolvingSKU(ctx, dest.ID, in)
		if err != nil {
			m.log.Warn("variant abandoned",
				zap.Int64("product_id", dest.ID),
				zap.String("sku", variant.SKU),
				zap.Error(err))
			continue
		}
		if outcome == variantSkipped {
			continue
		}
		dest.Variants = append(dest.Variants, created)
	}
	return dest, nil
}

// variantInput maps a source variant's selections onto the destination
// product's options, preferring each option's own value spelling.
func (m *Migrator) variantInput(variant catalog.Variant, options map[int64]catalog.DestOption) (catalog.VariantInput, error) {
	in := catalog.VariantInput{
		SKU:            variant.SKU,
		Price:          variant.Price,
		TrackInventory: true,
	}
	for _, sel := range variant.Selections {
		opt, ok := options[sel.OptionID]
		if !ok {
			return catalog.VariantInput{}, fmt.Errorf("%w: option %q",
				migration.ErrUnresolvedDependency, sel.OptionName)
		}
		value := sel.Label
		if canonical, ok := m.matcher.CanonicalValue(opt, sel.Label); ok {
			value = canonical
		} else {
			m.matcher.RegisterOptionValue(opt, sel.Label)
		}
		in.Options = append(in.Options, value)
	}
	return in, nil
}

// syncCustomFields reconciles custom fields as destination metafields under
// the configured dedup strategy.
//
// Under pair the (name, value) tuple is the uniqueness key: a field whose
// exact pair exists is skipped, a field with a known name and a new value is
// written alongside under a numbered key, so several fields may share a
// name. This mirrors the source platform on purpose and is configurable
// away via overwrite_by_name.
func (m *Migrator) syncCustomFields(ctx context.Context, product catalog.Product, destProductID int64) error {
	if len(product.CustomFields) == 0 {
		return nil
	}
	existing, err := m.dst.Metafields(ctx, destProductID)
	if err != nil {
		return err
	}

	byKey := make(map[string]catalog.DestMetafield, len(existing))
	pairs := make(map[string]bool, len(existing))
	names := make(map[string]int, len(existing))
	for _, mf := range existing {
		byKey[mf.Key] = mf
		base := catalog.Normalize(baseFieldName(mf.Key))
		pairs[base+"\x00"+mf.Value] = true
		names[base]++
	}

	for _, field := range product.CustomFields {
		base := catalog.Normalize(field.Name)

		if m.opts.FieldStrategy == migration.FieldStrategyOverwriteByName {
			if mf, ok := byKey[fieldKey(field.Name, 0)]; ok {
				if mf.Value != field.Value {
					if err := m.dst.UpdateMetafield(ctx, mf.ID, field.Value); err != nil {
						m.log.Warn("custom field overwrite failed",
							zap.Int64("product_id", destProductID),
							zap.String("name", field.Name),
							zap.Error(err))
					}
				}
				continue
			}
			if err := m.createField(ctx, destProductID, field.Name, field.Value, 0); err == nil {
				byKey[fieldKey(field.Name, 0)] = catalog.DestMetafield{Key: fieldKey(field.Name, 0), Value: field.Value}
			}
			continue
		}

		// pair strategy
		if pairs[base+"\x00"+field.Value] {
			continue
		}
		n := names[base]
		if err := m.createField(ctx, destProductID, field.Name, field.Value, n); err != nil {
			continue
		}
		pairs[base+"\x00"+field.Value] = true
		names[base] = n + 1
	}
	return nil
}

func (m *Migrator) createField(ctx context.Context, productID int64, name, value string, ordinal int) error {
	_, err := m.dst.CreateMetafield(ctx, productID, catalog.MetafieldInput{
		Key:   fieldKey(name, ordinal),
		Value: value,
	})
	if err != nil {
		m.log.Warn("custom field failed",
			zap.Int64("product_id", productID),
			zap.String("name", name),
			zap.Error(err))
	}
	return err
}

// fieldKey derives the destination key of a custom field. The destination
// enforces key uniqueness per namespace, so fields sharing a name under the
// pair strategy get numbered keys while keeping the same display name. The
// double underscore marks generated numbering, keeping a source name that
// itself ends in _2 distinct from the second copy of a plain name.
func fieldKey(name string, ordinal int) string {
	if ordinal == 0 {
		return name
	}
	return fmt.Sprintf("%s__%d", name, ordinal+1)
}

// baseFieldName strips the numbering fieldKey appends. Only a trailing
// __<digits> is recognized as generated; anything else is part of the name.
func baseFieldName(key string) string {
	i := len(key)
	for i > 0 && key[i-1] >= '0' && key[i-1] <= '9' {
		i--
	}
	if i == len(key) || i < 2 || key[i-1] != '_' || key[i-2] != '_' {
		return key
	}
	return key[:i-2]
}

// syncInventory writes stock levels at the resolved destination location.
// Variant-tracked products are written per variant by SKU match; a variant
// with no SKU match falls back to writing the product-level quantity to the
// first variant, preserving the source tool's behavior as-is.
func (m *Migrator) syncInventory(ctx context.Context, product catalog.Product, dest catalog.DestProduct, tracking catalog.InventoryTracking) {
	if tracking == catalog.TrackingNone || m.locationID == 0 {
		return
	}

	if tracking == catalog.TrackingProduct {
		if len(dest.Variants) > 0 && dest.Variants[0].InventoryItemID != 0 {
			m.setLevel(ctx, dest.ID, dest.Variants[0].InventoryItemID, product.Quantity)
		}
		return
	}

	matchedAny := false
	for _, variant := range product.RealVariants() {
		existing, ok := dest.VariantBySKU(variant.SKU)
		if !ok || existing.InventoryItemID == 0 {
			continue
		}
		matchedAny = true
		m.setLevel(ctx, dest.ID, existing.InventoryItemID, variant.Quantity)
	}
	if !matchedAny && len(dest.Variants) > 0 && dest.Variants[0].InventoryItemID != 0 {
		// No variant matched by SKU; fall back to product-level stock even
		// though the product is variant-tracked. Kept as-is pending
		// clarification of the source behavior.
		m.setLevel(ctx, dest.ID, dest.Variants[0].InventoryItemID, product.Quantity)
	}
}

func (m *Migrator) setLevel(ctx context.Context, productID, inventoryItemID, quantity int64) {
	if err := m.dst.SetInventoryLevel(ctx, m.locationID, inventoryItemID, quantity); err != nil {
		m.log.Warn("inventory write failed",
			zap.Int64("product_id", productID),
			zap.Int64("inventory_item_id", inventoryItemID),
			zap.Error(err))
	}
}
