package shopify

import (
	"github.com/shopspring/decimal"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
)

type shCollection struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle,omitempty"`
}

type shRule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

type shSmartCollection struct {
	ID     int64    `json:"id,omitempty"`
	Title  string   `json:"title"`
	Handle string   `json:"handle,omitempty"`
	Rules  []shRule `json:"rules,omitempty"`
}

type shOption struct {
	ID       int64    `json:"id,omitempty"`
	Name     string   `json:"name"`
	Position int      `json:"position,omitempty"`
	Values   []string `json:"values,omitempty"`
}

type shVariant struct {
	ID                  int64  `json:"id,omitempty"`
	SKU                 string `json:"sku"`
	Price               string `json:"price,omitempty"`
	Option1             string `json:"option1,omitempty"`
	Option2             string `json:"option2,omitempty"`
	Option3             string `json:"option3,omitempty"`
	InventoryItemID     int64  `json:"inventory_item_id,omitempty"`
	InventoryManagement string `json:"inventory_management,omitempty"`
}

type shProduct struct {
	ID       int64       `json:"id,omitempty"`
	Title    string      `json:"title"`
	Vendor   string      `json:"vendor,omitempty"`
	BodyHTML string      `json:"body_html,omitempty"`
	Status   string      `json:"status,omitempty"`
	Options  []shOption  `json:"options,omitempty"`
	Variants []shVariant `json:"variants,omitempty"`
}

type shImage struct {
	Src      string `json:"src"`
	Alt      string `json:"alt,omitempty"`
	Position int    `json:"position,omitempty"`
}

type shMetafield struct {
	ID        int64  `json:"id,omitempty"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
}

type shCollect struct {
	ProductID    int64 `json:"product_id"`
	CollectionID int64 `json:"collection_id"`
}

type shLocation struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func (c shCollection) toDomain() catalog.DestCollection {
	return catalog.DestCollection{ID: c.ID, Title: c.Title, Handle: c.Handle}
}

func (c shSmartCollection) toDomain() catalog.DestCollection {
	return catalog.DestCollection{ID: c.ID, Title: c.Title, Handle: c.Handle}
}

func (o shOption) toDomain() catalog.DestOption {
	return catalog.DestOption{
		ID:       o.ID,
		Name:     o.Name,
		Position: o.Position,
		Values:   append([]string(nil), o.Values...),
	}
}

func (v shVariant) toDomain() catalog.DestVariant {
	price, err := decimal.NewFromString(v.Price)
	if err != nil {
		price = decimal.Zero
	}
	out := catalog.DestVariant{
		ID:              v.ID,
		SKU:             v.SKU,
		Price:           price,
		InventoryItemID: v.InventoryItemID,
	}
	for _, opt := range []string{v.Option1, v.Option2, v.Option3} {
		if opt != "" {
			out.Options = append(out.Options, opt)
		}
	}
	return out
}

func (p shProduct) toDomain() catalog.DestProduct {
	out := catalog.DestProduct{ID: p.ID, Title: p.Title, Vendor: p.Vendor}
	for _, o := range p.Options {
		out.Options = append(out.Options, o.toDomain())
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, v.toDomain())
	}
	return out
}

func variantFromInput(in catalog.VariantInput) shVariant {
	v := shVariant{SKU: in.SKU}
	if !in.Price.IsZero() {
		v.Price = in.Price.StringFixed(2)
	}
	if in.TrackInventory {
		v.InventoryManagement = "shopify"
	}
	if len(in.Options) > 0 {
		v.Option1 = in.Options[0]
	}
	if len(in.Options) > 1 {
		v.Option2 = in.Options[1]
	}
	if len(in.Options) > 2 {
		v.Option3 = in.Options[2]
	}
	return v
}

func productFromInput(in catalog.ProductInput) shProduct {
	p := shProduct{
		Title:    in.Title,
		Vendor:   in.Vendor,
		BodyHTML: in.BodyHTML,
		Status:   in.Status,
	}
	for i, o := range in.Options {
		p.Options = append(p.Options, shOption{
			Name:     o.Name,
			Position: i + 1,
			Values:   append([]string(nil), o.Values...),
		})
	}
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, variantFromInput(v))
	}
	return p
}
