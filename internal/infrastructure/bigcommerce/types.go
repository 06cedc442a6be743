package bigcommerce

import (
	"github.com/shopspring/decimal"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
)

// listEnvelope is the v3 list response wrapper.
type listEnvelope[T any] struct {
	Data []T      `json:"data"`
	Meta listMeta `json:"meta"`
}

type listMeta struct {
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

type bcBrand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bcCategory struct {
	ID        int64  `json:"id"`
	ParentID  int64  `json:"parent_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	IsVisible bool   `json:"is_visible"`
}

type bcOptionValue struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
}

type bcOption struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	DisplayName  string          `json:"display_name"`
	OptionValues []bcOptionValue `json:"option_values"`
}

type bcVariantOptionValue struct {
	ID                int64  `json:"id"`
	OptionID          int64  `json:"option_id"`
	OptionDisplayName string `json:"option_display_name"`
	Label             string `json:"label"`
}

type bcVariant struct {
	ID             int64                  `json:"id"`
	ProductID      int64                  `json:"product_id"`
	SKU            string                 `json:"sku"`
	Price          decimal.NullDecimal    `json:"price"`
	InventoryLevel int64                  `json:"inventory_level"`
	OptionValues   []bcVariantOptionValue `json:"option_values"`
}

type bcCustomField struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type bcImage struct {
	ID          int64  `json:"id"`
	IsThumbnail bool   `json:"is_thumbnail"`
	SortOrder   int    `json:"sort_order"`
	Description string `json:"description"`
	URLStandard string `json:"url_standard"`
}

type bcProduct struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	BrandID           int64           `json:"brand_id"`
	Categories        []int64         `json:"categories"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	InventoryLevel    int64           `json:"inventory_level"`
	InventoryTracking string          `json:"inventory_tracking"`
	IsVisible         bool            `json:"is_visible"`

	Variants     []bcVariant     `json:"variants"`
	Options      []bcOption      `json:"options"`
	CustomFields []bcCustomField `json:"custom_fields"`
	Images       []bcImage       `json:"images"`
}

// toDomain converts a fetched product and its sub-resources to the
// platform-neutral model.
func (p bcProduct) toDomain() catalog.Product {
	out := catalog.Product{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		BrandID:     p.BrandID,
		CategoryIDs: append([]int64(nil), p.Categories...),
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.InventoryLevel,
		Tracking:    trackingFromBC(p.InventoryTracking),
		Visible:     p.IsVisible,
	}

	for _, o := range p.Options {
		opt := catalog.Option{ID: o.ID, Name: o.DisplayName}
		for _, v := range o.OptionValues {
			opt.Values = append(opt.Values, catalog.OptionValue{
				ID:       v.ID,
				Label:    v.Label,
				Position: v.SortOrder,
			})
		}
		out.Options = append(out.Options, opt)
	}

	for _, v := range p.Variants {
		price := p.Price
		if v.Price.Valid {
			price = v.Price.Decimal
		}
		variant := catalog.Variant{
			ID:       v.ID,
			SKU:      v.SKU,
			Price:    price,
			Quantity: v.InventoryLevel,
		}
		for _, ov := range v.OptionValues {
			variant.Selections = append(variant.Selections, catalog.VariantSelection{
				OptionID:   ov.OptionID,
				OptionName: ov.OptionDisplayName,
				Label:      ov.Label,
			})
		}
		out.Variants = append(out.Variants, variant)
	}

	for _, f := range p.CustomFields {
		out.CustomFields = append(out.CustomFields, catalog.CustomField{
			ID:    f.ID,
			Name:  f.Name,
			Value: f.Value,
		})
	}

	for _, img := range p.Images {
		out.Images = append(out.Images, catalog.Image{
			ID:        img.ID,
			URL:       img.URLStandard,
			Alt:       img.Description,
			Position:  img.SortOrder,
			Thumbnail: img.IsThumbnail,
		})
	}

	return out
}

func trackingFromBC(mode string) catalog.InventoryTracking {
	switch mode {
	case "variant":
		return catalog.TrackingVariant
	case "product":
		return catalog.TrackingProduct
	default:
		return catalog.TrackingNone
	}
}
