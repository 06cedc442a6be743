package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Source Entities
// ---------------------------------------------------------------------------

// Brand is a source brand.
type Brand struct {
	ID   int64
	Name string
}

// Category is a source category. Categories form a tree; ParentID 0 means
// the category is a root.
type Category struct {
	ID        int64
	ParentID  int64
	Name      string
	SortOrder int
	Visible   bool
}

// IsRoot returns true if the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == 0
}

// CustomField is a free-form (name, value) pair attached to a source product.
// Names are not unique: a product may legitimately carry several fields with
// the same name and different values.
type CustomField struct {
	ID    int64
	Name  string
	Value string
}

// Image is a source product image. Only the URL travels to the destination;
// byte transcoding is out of scope.
type Image struct {
	ID        int64
	URL       string
	Alt       string
	Position  int
	Thumbnail bool
}

// OptionValue is one selectable value of a product option.
type OptionValue struct {
	ID       int64
	Label    string
	Position int
}

// Option is a product option (e.g. "Color") with its values.
type Option struct {
	ID     int64
	Name   string
	Values []OptionValue
}

// VariantSelection binds a variant to one option value.
type VariantSelection struct {
	OptionID   int64
	OptionName string
	Label      string
}

// Variant is a purchasable variation of a product. A variant with no
// selections is the product's base variant, not a real variant.
type Variant struct {
	ID         int64
	SKU        string
	Price      decimal.Decimal
	Quantity   int64
	Selections []VariantSelection
}

// IsReal returns true if the variant carries at least one option selection.
func (v Variant) IsReal() bool {
	return len(v.Selections) > 0
}

// InventoryTracking is the stock tracking mode of a product.
type InventoryTracking string

const (
	// TrackingNone disables stock tracking.
	TrackingNone InventoryTracking = "none"
	// TrackingProduct tracks stock at the product level.
	TrackingProduct InventoryTracking = "product"
	// TrackingVariant tracks stock per variant.
	TrackingVariant InventoryTracking = "variant"
)

// Product is a source product with all of its sub-resources attached.
type Product struct {
	ID          int64
	Name        string
	SKU         string
	BrandID     int64
	CategoryIDs []int64
	Description string
	Price       decimal.Decimal
	Quantity    int64
	Tracking    InventoryTracking
	Visible     bool

	Options      []Option
	Variants     []Variant
	CustomFields []CustomField
	Images       []Image
}

// HasRealVariants returns true if any variant carries option selections.
// Products without real variants are tracked at the product level on the
// destination regardless of their nominal variant list.
func (p Product) HasRealVariants() bool {
	for _, v := range p.Variants {
		if v.IsReal() {
			return true
		}
	}
	return false
}

// DerivedTracking returns the inventory tracking mode the destination product
// must be created with. The mode is derived from the variant structure, not
// copied blindly: flipping the mode after creation has different side effects
// than setting it up front.
func (p Product) DerivedTracking() InventoryTracking {
	if p.HasRealVariants() {
		return TrackingVariant
	}
	if p.Tracking == TrackingNone {
		return TrackingNone
	}
	return TrackingProduct
}

// RealVariants returns the variants that carry option selections, in source
// order.
func (p Product) RealVariants() []Variant {
	out := make([]Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.IsReal() {
			out = append(out, v)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Destination Entities
// ---------------------------------------------------------------------------

// DestCollection is a destination collection. Brand collections and category
// collections share this shape; category collections carry the slash-joined
// category path as their title.
type DestCollection struct {
	ID     int64
	Title  string
	Handle string
}

// DestOption is an option already present on a destination product.
type DestOption struct {
	ID       int64
	Name     string
	Position int
	Values   []string
}

// DestVariant is a variant already present on a destination product.
// Options holds the ordered option values (option1..option3).
type DestVariant struct {
	ID              int64
	SKU             string
	Price           decimal.Decimal
	InventoryItemID int64
	Options         []string
}

// DestProduct is a destination product with its options and variants.
type DestProduct struct {
	ID       int64
	Title    string
	Vendor   string
	Options  []DestOption
	Variants []DestVariant
}

// VariantBySKU returns the destination variant carrying the given SKU, if any.
// SKU comparison is exact after trimming, never normalized: SKUs are codes,
// not display text.
func (p DestProduct) VariantBySKU(sku string) (DestVariant, bool) {
	want := strings.TrimSpace(sku)
	if want == "" {
		return DestVariant{}, false
	}
	for _, v := range p.Variants {
		if strings.TrimSpace(v.SKU) == want {
			return v, true
		}
	}
	return DestVariant{}, false
}

// DestMetafield is a destination custom field.
type DestMetafield struct {
	ID        int64
	Namespace string
	Key       string
	Value     string
}

// ---------------------------------------------------------------------------
// Write Payloads
// ---------------------------------------------------------------------------

// OptionInput describes an option to create on a destination product.
type OptionInput struct {
	Name   string
	Values []string
}

// VariantInput describes a variant to create on a destination product.
// Options holds the ordered option values matching the product's options.
type VariantInput struct {
	SKU            string
	Price          decimal.Decimal
	Options        []string
	TrackInventory bool
}

// ProductInput is the create/update payload for a destination product.
type ProductInput struct {
	Title    string
	Vendor   string
	BodyHTML string
	Status   string
	Options  []OptionInput
	Variants []VariantInput
}

// CollectionInput is the create payload for a destination collection.
type CollectionInput struct {
	Title string
	// VendorRule, when set, makes this a rule-based collection matching all
	// products of the given vendor. Used for brand collections.
	VendorRule string
}

// ImageInput is the create payload for a destination product image.
type ImageInput struct {
	Src      string
	Alt      string
	Position int
}

// MetafieldInput is the create payload for a destination metafield.
type MetafieldInput struct {
	Namespace string
	Key       string
	Value     string
}
