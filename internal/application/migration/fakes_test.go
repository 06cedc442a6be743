package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
)

// fakeSource serves a fixed source catalog.
type fakeSource struct {
	brands     []catalog.Brand
	categories []catalog.Category
	products   []catalog.Product
}

func (s *fakeSource) Brands(context.Context) ([]catalog.Brand, error) {
	return s.brands, nil
}

func (s *fakeSource) Categories(context.Context) ([]catalog.Category, error) {
	return s.categories, nil
}

func (s *fakeSource) Products(context.Context) ([]catalog.Product, error) {
	return s.products, nil
}

var _ catalog.SourceCatalog = (*fakeSource)(nil)

// fakeDest is an in-memory destination enforcing the same uniqueness rules
// the real platform rejects with: collection titles, product titles, global
// variant SKUs, per-product option names and option combinations. Rejections
// surface as the classified sentinel errors, the shape the reconciler sees
// from the real client.
type fakeDest struct {
	nextID int64

	brandCols []catalog.DestCollection
	cols      []catalog.DestCollection
	products  map[int64]*catalog.DestProduct
	order     []int64

	metafields map[int64][]catalog.DestMetafield
	collects   map[[2]int64]bool
	inventory  map[[2]int64]int64
	images     map[int64]int
	skus       map[string]bool

	locationID int64

	createdCollections int
	createdProducts    int
	updatedProducts    int
	createdVariants    int
	createdMetafields  int
	inventoryWrites    int
}

func newFakeDest() *fakeDest {
	return &fakeDest{
		nextID:     100,
		products:   make(map[int64]*catalog.DestProduct),
		metafields: make(map[int64][]catalog.DestMetafield),
		collects:   make(map[[2]int64]bool),
		inventory:  make(map[[2]int64]int64),
		images:     make(map[int64]int),
		skus:       make(map[string]bool),
		locationID: 1,
	}
}

func (d *fakeDest) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *fakeDest) BrandCollections(context.Context) ([]catalog.DestCollection, error) {
	return append([]catalog.DestCollection(nil), d.brandCols...), nil
}

func (d *fakeDest) Collections(context.Context) ([]catalog.DestCollection, error) {
	return append([]catalog.DestCollection(nil), d.cols...), nil
}

func (d *fakeDest) CreateCollection(_ context.Context, in catalog.CollectionInput) (catalog.DestCollection, error) {
	all := append(append([]catalog.DestCollection(nil), d.brandCols...), d.cols...)
	for _, c := range all {
		if c.Title == in.Title {
			return catalog.DestCollection{}, fmt.Errorf("%w: title %q", migration.ErrDuplicateName, in.Title)
		}
	}
	col := catalog.DestCollection{ID: d.id(), Title: in.Title}
	if in.VendorRule != "" {
		d.brandCols = append(d.brandCols, col)
	} else {
		d.cols = append(d.cols, col)
	}
	d.createdCollections++
	return col, nil
}

func (d *fakeDest) AssignProductToCollection(_ context.Context, productID, collectionID int64) error {
	d.collects[[2]int64{productID, collectionID}] = true
	return nil
}

// ProductsByTitle is a literal match, like the platform's title filter; the
// broader normalized probe is SearchProducts.
func (d *fakeDest) ProductsByTitle(_ context.Context, title string) ([]catalog.DestProduct, error) {
	var out []catalog.DestProduct
	for _, id := range d.order {
		if d.products[id].Title == title {
			out = append(out, *d.products[id])
		}
	}
	return out, nil
}

func (d *fakeDest) SearchProducts(_ context.Context, keyword string) ([]catalog.DestProduct, error) {
	key := catalog.Normalize(keyword)
	var out []catalog.DestProduct
	for _, id := range d.order {
		if strings.Contains(catalog.Normalize(d.products[id].Title), key) {
			out = append(out, *d.products[id])
		}
	}
	return out, nil
}

func (d *fakeDest) GetProduct(_ context.Context, id int64) (catalog.DestProduct, error) {
	p, ok := d.products[id]
	if !ok {
		return catalog.DestProduct{}, fmt.Errorf("fake: product %d not found", id)
	}
	return *p, nil
}

func (d *fakeDest) CreateProduct(_ context.Context, in catalog.ProductInput) (catalog.DestProduct, error) {
	for _, existing := range d.products {
		if catalog.Normalize(existing.Title) == catalog.Normalize(in.Title) {
			return catalog.DestProduct{}, fmt.Errorf("%w: handle %q", migration.ErrDuplicateName, in.Title)
		}
	}
	for _, v := range in.Variants {
		if v.SKU != "" && d.skus[v.SKU] {
			return catalog.DestProduct{}, fmt.Errorf("%w: %q", migration.ErrDuplicateSKU, v.SKU)
		}
	}

	p := &catalog.DestProduct{ID: d.id(), Title: in.Title, Vendor: in.Vendor}
	for i, o := range in.Options {
		p.Options = append(p.Options, catalog.DestOption{
			ID:       d.id(),
			Name:     o.Name,
			Position: i + 1,
			Values:   append([]string(nil), o.Values...),
		})
	}
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, catalog.DestVariant{
			ID:              d.id(),
			SKU:             v.SKU,
			Price:           v.Price,
			InventoryItemID: d.id(),
			Options:         append([]string(nil), v.Options...),
		})
		if v.SKU != "" {
			d.skus[v.SKU] = true
		}
	}
	d.products[p.ID] = p
	d.order = append(d.order, p.ID)
	d.createdProducts++
	return *p, nil
}

func (d *fakeDest) UpdateProduct(_ context.Context, id int64, in catalog.ProductInput) (catalog.DestProduct, error) {
	p, ok := d.products[id]
	if !ok {
		return catalog.DestProduct{}, fmt.Errorf("fake: product %d not found", id)
	}
	p.Title = in.Title
	p.Vendor = in.Vendor
	d.updatedProducts++
	return *p, nil
}

func (d *fakeDest) AddProductOption(_ context.Context, productID int64, in catalog.OptionInput) (catalog.DestOption, error) {
	p, ok := d.products[productID]
	if !ok {
		return catalog.DestOption{}, fmt.Errorf("fake: product %d not found", productID)
	}
	for _, o := range p.Options {
		if o.Name == in.Name {
			return catalog.DestOption{}, fmt.Errorf("%w: option name %q", migration.ErrValueAlreadyUsed, in.Name)
		}
	}
	opt := catalog.DestOption{
		ID:       d.id(),
		Name:     in.Name,
		Position: len(p.Options) + 1,
		Values:   append([]string(nil), in.Values...),
	}
	p.Options = append(p.Options, opt)
	return opt, nil
}

func (d *fakeDest) CreateVariant(_ context.Context, productID int64, in catalog.VariantInput) (catalog.DestVariant, error) {
	p, ok := d.products[productID]
	if !ok {
		return catalog.DestVariant{}, fmt.Errorf("fake: product %d not found", productID)
	}
	for _, existing := range p.Variants {
		if len(existing.Options) == len(in.Options) && len(in.Options) > 0 {
			same := true
			for i := range in.Options {
				if existing.Options[i] != in.Options[i] {
					same = false
					break
				}
			}
			if same {
				return catalog.DestVariant{}, fmt.Errorf("%w: variant already exists", migration.ErrValueAlreadyUsed)
			}
		}
	}
	if in.SKU != "" && d.skus[in.SKU] {
		return catalog.DestVariant{}, fmt.Errorf("%w: %q", migration.ErrDuplicateSKU, in.SKU)
	}

	v := catalog.DestVariant{
		ID:              d.id(),
		SKU:             in.SKU,
		Price:           in.Price,
		InventoryItemID: d.id(),
		Options:         append([]string(nil), in.Options...),
	}
	p.Variants = append(p.Variants, v)
	if in.SKU != "" {
		d.skus[in.SKU] = true
	}
	d.createdVariants++
	return v, nil
}

func (d *fakeDest) Metafields(_ context.Context, productID int64) ([]catalog.DestMetafield, error) {
	return append([]catalog.DestMetafield(nil), d.metafields[productID]...), nil
}

func (d *fakeDest) CreateMetafield(_ context.Context, productID int64, in catalog.MetafieldInput) (catalog.DestMetafield, error) {
	for _, mf := range d.metafields[productID] {
		if mf.Key == in.Key {
			return catalog.DestMetafield{}, fmt.Errorf("%w: key %q", migration.ErrValueAlreadyUsed, in.Key)
		}
	}
	mf := catalog.DestMetafield{ID: d.id(), Namespace: "custom", Key: in.Key, Value: in.Value}
	d.metafields[productID] = append(d.metafields[productID], mf)
	d.createdMetafields++
	return mf, nil
}

func (d *fakeDest) UpdateMetafield(_ context.Context, metafieldID int64, value string) error {
	for pid, fields := range d.metafields {
		for i, mf := range fields {
			if mf.ID == metafieldID {
				d.metafields[pid][i].Value = value
				return nil
			}
		}
	}
	return fmt.Errorf("fake: metafield %d not found", metafieldID)
}

func (d *fakeDest) CreateImage(_ context.Context, productID int64, _ catalog.ImageInput) error {
	d.images[productID]++
	return nil
}

func (d *fakeDest) PrimaryLocation(context.Context) (int64, error) {
	return d.locationID, nil
}

func (d *fakeDest) SetInventoryLevel(_ context.Context, locationID, inventoryItemID, quantity int64) error {
	d.inventory[[2]int64{locationID, inventoryItemID}] = quantity
	d.inventoryWrites++
	return nil
}

var _ catalog.DestinationCatalog = (*fakeDest)(nil)

// seedProduct plants a pre-existing destination product outside of any run.
func (d *fakeDest) seedProduct(p catalog.DestProduct) {
	if p.ID == 0 {
		p.ID = d.id()
	}
	for i := range p.Variants {
		if p.Variants[i].InventoryItemID == 0 {
			p.Variants[i].InventoryItemID = d.id()
		}
		if p.Variants[i].SKU != "" {
			d.skus[p.Variants[i].SKU] = true
		}
	}
	cp := p
	d.products[p.ID] = &cp
	d.order = append(d.order, p.ID)
}
