package catalog

import "context"

// SourceCatalog reads the catalog of the source store. Implementations fetch
// collections to completion; pagination never leaks to callers.
type SourceCatalog interface {
	// Brands returns all source brands.
	Brands(ctx context.Context) ([]Brand, error)

	// Categories returns all source categories in server order. The list may
	// contain children before their parents.
	Categories(ctx context.Context) ([]Category, error)

	// Products returns all source products with options, variants, custom
	// fields and images attached.
	Products(ctx context.Context) ([]Product, error)
}

// DestinationCatalog reads and writes the catalog of the destination store.
//
// Write operations classify destination-side uniqueness rejections into the
// sentinel conflict errors of the migration package (duplicate name,
// duplicate SKU, value already used) so callers can apply resolution policy
// without inspecting transport internals.
type DestinationCatalog interface {
	// ---------------------------------------------------------------------
	// Collections (brands and categories)
	// ---------------------------------------------------------------------

	// BrandCollections returns all rule-based brand collections.
	BrandCollections(ctx context.Context) ([]DestCollection, error)

	// Collections returns all category collections.
	Collections(ctx context.Context) ([]DestCollection, error)

	// CreateCollection creates a collection. A vendor rule in the input makes
	// it a brand collection.
	CreateCollection(ctx context.Context, in CollectionInput) (DestCollection, error)

	// AssignProductToCollection places a product into a category collection.
	// Assigning a product that is already in the collection is not an error.
	AssignProductToCollection(ctx context.Context, productID, collectionID int64) error

	// ---------------------------------------------------------------------
	// Products
	// ---------------------------------------------------------------------

	// ProductsByTitle returns destination products whose title matches the
	// given title. The match is the destination's own, typically looser than
	// equivalence-key equality; callers re-filter.
	ProductsByTitle(ctx context.Context, title string) ([]DestProduct, error)

	// SearchProducts returns destination products loosely matching a keyword.
	SearchProducts(ctx context.Context, keyword string) ([]DestProduct, error)

	// GetProduct returns one destination product with options and variants.
	GetProduct(ctx context.Context, id int64) (DestProduct, error)

	// CreateProduct creates a product with its options and initial variants.
	CreateProduct(ctx context.Context, in ProductInput) (DestProduct, error)

	// UpdateProduct updates a product in place.
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (DestProduct, error)

	// AddProductOption appends an option to an existing product.
	AddProductOption(ctx context.Context, productID int64, in OptionInput) (DestOption, error)

	// CreateVariant creates a variant on an existing product.
	CreateVariant(ctx context.Context, productID int64, in VariantInput) (DestVariant, error)

	// ---------------------------------------------------------------------
	// Sub-resources
	// ---------------------------------------------------------------------

	// Metafields returns the custom fields of a destination product.
	Metafields(ctx context.Context, productID int64) ([]DestMetafield, error)

	// CreateMetafield attaches a custom field to a destination product.
	CreateMetafield(ctx context.Context, productID int64, in MetafieldInput) (DestMetafield, error)

	// UpdateMetafield rewrites the value of an existing custom field.
	UpdateMetafield(ctx context.Context, metafieldID int64, value string) error

	// CreateImage attaches an image to a destination product by source URL.
	CreateImage(ctx context.Context, productID int64, in ImageInput) error

	// ---------------------------------------------------------------------
	// Inventory
	// ---------------------------------------------------------------------

	// PrimaryLocation resolves the destination's default stock location.
	// Called once before any pass; failure aborts the run.
	PrimaryLocation(ctx context.Context) (int64, error)

	// SetInventoryLevel sets the available quantity of an inventory item at
	// a location.
	SetInventoryLevel(ctx context.Context, locationID, inventoryItemID, quantity int64) error
}
