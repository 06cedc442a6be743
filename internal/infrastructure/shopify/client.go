package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
	"github.com/cartbridge/cartbridge/internal/infrastructure/transport"
)

// metafieldNamespace is the namespace migrated custom fields live under.
const metafieldNamespace = "custom"

// ErrNoActiveLocation is returned when the shop has no active inventory
// location to write stock levels to.
var ErrNoActiveLocation = errors.New("shopify: no active inventory location")

// Client reads and writes a Shopify shop's catalog. It is the
// DestinationCatalog implementation of a migration run.
type Client struct {
	config *Config
	ex     *transport.Executor
	log    *zap.Logger
}

// NewClient creates a Shopify client with the given configuration.
func NewClient(config *Config, log *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}
	ex := transport.NewExecutor(httpClient, log,
		transport.WithHeader("X-Shopify-Access-Token", config.AccessToken))
	return &Client{config: config, ex: ex, log: log}, nil
}

// NewClientWithExecutor creates a client over a prepared executor. Tests use
// it to inject short backoff intervals.
func NewClientWithExecutor(config *Config, ex *transport.Executor, log *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{config: config, ex: ex, log: log}, nil
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

// BrandCollections returns all rule-based brand collections.
func (c *Client) BrandCollections(ctx context.Context) ([]catalog.DestCollection, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.config.PageSize))
	rows, err := transport.FetchAllLinked(ctx, c.ex, c.config.endpoint("smart_collections"), query,
		decodeList[shSmartCollection]("smart_collections"))
	if err != nil {
		return nil, err
	}
	out := make([]catalog.DestCollection, 0, len(rows))
	for _, col := range rows {
		out = append(out, col.toDomain())
	}
	return out, nil
}

// Collections returns all category collections.
func (c *Client) Collections(ctx context.Context) ([]catalog.DestCollection, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.config.PageSize))
	rows, err := transport.FetchAllLinked(ctx, c.ex, c.config.endpoint("custom_collections"), query,
		decodeList[shCollection]("custom_collections"))
	if err != nil {
		return nil, err
	}
	out := make([]catalog.DestCollection, 0, len(rows))
	for _, col := range rows {
		out = append(out, col.toDomain())
	}
	return out, nil
}

// CreateCollection creates a custom collection, or a vendor-rule smart
// collection when the input carries a vendor rule.
func (c *Client) CreateCollection(ctx context.Context, in catalog.CollectionInput) (catalog.DestCollection, error) {
	if in.VendorRule != "" {
		body := map[string]shSmartCollection{"smart_collection": {
			Title: in.Title,
			Rules: []shRule{{Column: "vendor", Relation: "equals", Condition: in.VendorRule}},
		}}
		resp, err := c.ex.Do(ctx, "POST", c.config.endpoint("smart_collections"), nil, body)
		if err != nil {
			return catalog.DestCollection{}, classifyWriteError(err)
		}
		var env struct {
			SmartCollection shSmartCollection `json:"smart_collection"`
		}
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return catalog.DestCollection{}, fmt.Errorf("shopify: parse response: %w", err)
		}
		return env.SmartCollection.toDomain(), nil
	}

	body := map[string]shCollection{"custom_collection": {Title: in.Title}}
	resp, err := c.ex.Do(ctx, "POST", c.config.endpoint("custom_collections"), nil, body)
	if err != nil {
		return catalog.DestCollection{}, classifyWriteError(err)
	}
	var env struct {
		CustomCollection shCollection `json:"custom_collection"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return catalog.DestCollection{}, fmt.Errorf("shopify: parse response: %w", err)
	}
	return env.CustomCollection.toDomain(), nil
}

// AssignProductToCollection places a product into a custom collection. A
// collect that already exists is reported by the API as a uniqueness
// rejection; that outcome is the desired state and is treated as success.
func (c *Client) AssignProductToCollection(ctx context.Context, productID, collectionID int64) error {
	body := map[string]shCollect{"collect": {ProductID: productID, CollectionID: collectionID}}
	_, err := c.ex.Do(ctx, "POST", c.config.endpoint("collects"), nil, body)
	if err == nil {
		return nil
	}
	err = classifyWriteError(err)
	if errors.Is(err, migration.ErrValueAlreadyUsed) {
		return nil
	}
	return err
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// ProductsByTitle returns destination products matching a title. Shopify's
// title filter is a literal match; callers re-filter by equivalence key.
func (c *Client) ProductsByTitle(ctx context.Context, title string) ([]catalog.DestProduct, error) {
	return c.fetchProducts(ctx, title)
}

// SearchProducts returns products whose titles loosely match a keyword. The
// platform's title filter is literal and misses spellings that only differ
// in case, spacing or diacritics, so the broader probe pages the product
// list and filters by normalized containment on the client.
func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]catalog.DestProduct, error) {
	all, err := c.fetchProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	key := catalog.Normalize(keyword)
	out := make([]catalog.DestProduct, 0, len(all))
	for _, p := range all {
		if strings.Contains(catalog.Normalize(p.Title), key) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Client) fetchProducts(ctx context.Context, title string) ([]catalog.DestProduct, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.config.PageSize))
	if title != "" {
		query.Set("title", title)
	}
	rows, err := transport.FetchAllLinked(ctx, c.ex, c.config.endpoint("products"), query,
		decodeList[shProduct]("products"))
	if err != nil {
		return nil, err
	}
	out := make([]catalog.DestProduct, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.toDomain())
	}
	return out, nil
}

// GetProduct returns one product with options and variants.
func (c *Client) GetProduct(ctx context.Context, id int64) (catalog.DestProduct, error) {
	resp, err := c.ex.Do(ctx, "GET", c.config.endpoint(fmt.Sprintf("products/%d", id)), nil, nil)
	if err != nil {
		return catalog.DestProduct{}, err
	}
	var env struct {
		Product shProduct `json:"product"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return catalog.DestProduct{}, fmt.Errorf("shopify: parse response: %w", err)
	}
	return env.Product.toDomain(), nil
}

// CreateProduct creates a product with its options and initial variants.
func (c *Client) CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.DestProduct, error) {
	body := map[string]shProduct{"product": productFromInput(in)}
	resp, err := c.ex.Do(ctx, "POST", c.config.endpoint("products"), nil, body)
	if err != nil {
		return catalog.DestProduct{}, classifyWriteError(err)
	}
	var env struct {
		Product shProduct `json:"product"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return catalog.DestProduct{}, fmt.Errorf("shopify: parse response: %w", err)
	}
	return env.Product.toDomain(), nil
}

// UpdateProduct updates a product in place. Options and variants are only
// sent when present in the input, so a metadata-only update cannot clobber
// the variant set.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in catalog.ProductInput) (catalog.DestProduct, error) {
	p := productFromInput(in)
	p.ID = id
	body := map[string]shProduct{"product": p}
	resp, err := c.ex.Do(ctx, "PUT", c.config.endpoint(fmt.Sprintf("products/%d", id)), nil, body)
	if err != nil {
		return catalog.DestProduct{}, classifyWriteError(err)
	}
	var env struct {
		Product shProduct `json:"product"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return catalog.DestProduct{}, fmt.Errorf("shopify: parse response: %w", err)
	}
	return env.Product.toDomain(), nil
}

// AddProductOption appends an option to an existing product by rewriting the
// product's option list. A rejection reporting the option name as already
// used is classified for the conflict resolver to rebind.
func (c *Client) AddProductOption(ctx context.Context, productID int64, in catalog.OptionInput) (catalog.DestOption, error) {
	current, err := c.GetProduct(ctx, productID)
	if err != nil {
		return catalog.DestOption{}, err
	}

	options := make([]shOption, 0, len(current.Options)+1)
	for _, o := range current.Options {
		options = append(options, shOption{ID: o.ID, Name: o.Name, Position: o.Position})
	}
	options = append(options, shOption{
		Name:     in.Name,
		Position: len(options) + 1,
		Values:   append([]string(nil), in.Values...),
	})

	body := map[string]shProduct{"product": {ID: productID, Title: current.Title, Options: options}}
	resp, err := c.ex.Do(ctx, "PUT", c.config.endpoint(fmt.Sprintf("products/%d", productID)), nil, body)
	if err != nil {
		return catalog.DestOption{}, classifyWriteError(err)
	}
	var env struct {
		Product shProduct `json:"product"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return catalog.DestOption{}, fmt.Errorf("shopify: parse response: %w", err)
	}
	for _, o := range env.Product.Options {
		if o.Name == in.Name {
			return o.toDomain(), nil
		}
	}
	return catalog.DestOption{}, fmt.Errorf("shopify: option %q missing from update response", in.Name)
}

// CreateVariant creates a variant on an existing product. Duplicate SKU and
// duplicate option-combination rejections are classified for the conflict
// resolver.
func (c *Client) CreateVariant(ctx context.Context, productID int64, in catalog.VariantInput) (catalog.DestVariant, error) {
	body := map[string]shVariant{"variant": variantFromInput(in)}
	resp, err := c.ex.Do(ctx, "POST", c.config.endpoint(fmt.Sprintf("products/%d/variants", productID)), nil, body)
	if err != nil {
		return catalog.DestVariant{}, classifyWriteError(err)
	}
	var env struct {
		Variant shVariant `json:"variant"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return catalog.DestVariant{}, fmt.Errorf("shopify: parse response: %w", err)
	}
	return env.Variant.toDomain(), nil
}

// ---------------------------------------------------------------------------
// Sub-resources
// ---------------------------------------------------------------------------

// Metafields returns the migrated custom fields of a product.
func (c *Client) Metafields(ctx context.Context, productID int64) ([]catalog.DestMetafield, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.config.PageSize))
	query.Set("namespace", metafieldNamespace)
	rows, err := transport.FetchAllLinked(ctx, c.ex, c.config.endpoint(fmt.Sprintf("products/%d/metafields", productID)), query,
		decodeList[shMetafield]("metafields"))
	if err != nil {
		return nil, err
	}
	out := make([]catalog.DestMetafield, 0, len(rows))
	for _, m := range rows {
		out = append(out, catalog.DestMetafield{
			ID:        m.ID,
			Namespace: m.Namespace,
			Key:       m.Key,
			Value:     m.Value,
		})
	}
	return out, nil
}

// CreateMetafield attaches a custom field to a product.
func (c *Client) CreateMetafield(ctx context.Context, productID int64, in catalog.MetafieldInput) (catalog.DestMetafield, error) {
	namespace := in.Namespace
	if namespace == "" {
		namespace = metafieldNamespace
	}
	body := map[string]shMetafield{"metafield": {
		Namespace: namespace,
		Key:       in.Key,
		Value:     in.Value,
		Type:      "multi_line_text_field",
	}}
	resp, err := c.ex.Do(ctx, "POST", c.config.endpoint(fmt.Sprintf("products/%d/metafields", productID)), nil, body)
	if err != nil {
		return catalog.DestMetafield{}, classifyWriteError(err)
	}
	var env struct {
		Metafield shMetafield `json:"metafield"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return catalog.DestMetafield{}, fmt.Errorf("shopify: parse response: %w", err)
	}
	return catalog.DestMetafield{
		ID:        env.Metafield.ID,
		Namespace: env.Metafield.Namespace,
		Key:       env.Metafield.Key,
		Value:     env.Metafield.Value,
	}, nil
}

// UpdateMetafield rewrites the value of an existing custom field.
func (c *Client) UpdateMetafield(ctx context.Context, metafieldID int64, value string) error {
	body := map[string]any{"metafield": map[string]any{"id": metafieldID, "value": value}}
	_, err := c.ex.Do(ctx, "PUT", c.config.endpoint(fmt.Sprintf("metafields/%d", metafieldID)), nil, body)
	return err
}

// CreateImage attaches an image to a product by source URL. Shopify fetches
// and transcodes the bytes itself.
func (c *Client) CreateImage(ctx context.Context, productID int64, in catalog.ImageInput) error {
	body := map[string]shImage{"image": {Src: in.Src, Alt: in.Alt, Position: in.Position}}
	_, err := c.ex.Do(ctx, "POST", c.config.endpoint(fmt.Sprintf("products/%d/images", productID)), nil, body)
	return err
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

// PrimaryLocation resolves the shop's first active inventory location.
func (c *Client) PrimaryLocation(ctx context.Context) (int64, error) {
	resp, err := c.ex.Do(ctx, "GET", c.config.endpoint("locations"), nil, nil)
	if err != nil {
		return 0, err
	}
	var env struct {
		Locations []shLocation `json:"locations"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return 0, fmt.Errorf("shopify: parse response: %w", err)
	}
	for _, loc := range env.Locations {
		if loc.Active {
			return loc.ID, nil
		}
	}
	return 0, ErrNoActiveLocation
}

// SetInventoryLevel sets the available quantity of an inventory item at a
// location.
func (c *Client) SetInventoryLevel(ctx context.Context, locationID, inventoryItemID, quantity int64) error {
	body := map[string]int64{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         quantity,
	}
	_, err := c.ex.Do(ctx, "POST", c.config.endpoint("inventory_levels/set"), nil, body)
	return err
}

// decodeList parses a keyed list response ({"products":[...]}).
func decodeList[T any](key string) func([]byte) ([]T, error) {
	return func(body []byte) ([]T, error) {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("shopify: parse response: %w", err)
		}
		raw, ok := env[key]
		if !ok {
			return nil, nil
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("shopify: parse %s: %w", key, err)
		}
		return items, nil
	}
}

// Ensure Client implements DestinationCatalog
var _ catalog.DestinationCatalog = (*Client)(nil)
