package bigcommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/cartbridge/cartbridge/internal/domain/catalog"
	"github.com/cartbridge/cartbridge/internal/infrastructure/transport"
)

// Client reads a BigCommerce store's catalog. It is the SourceCatalog
// implementation of a migration run.
type Client struct {
	config *Config
	ex     *transport.Executor
	log    *zap.Logger
}

// NewClient creates a BigCommerce client with the given configuration.
func NewClient(config *Config, log *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}
	ex := transport.NewExecutor(httpClient, log,
		transport.WithHeader("X-Auth-Token", config.AccessToken))
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

// decodePage parses one v3 list page into items plus pagination metadata.
func decodePage[T any](body []byte) ([]T, transport.PageMeta, error) {
	var env listEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, transport.PageMeta{}, fmt.Errorf("bigcommerce: parse response: %w", err)
	}
	return env.Data, transport.PageMeta{TotalPages: env.Meta.Pagination.TotalPages}, nil
}

// Brands returns all brands of the store.
func (c *Client) Brands(ctx context.Context) ([]catalog.Brand, error) {
	rows, err := transport.FetchAllPages(ctx, c.ex, c.config.catalogURL("brands"), nil, c.config.PageSize, decodePage[bcBrand])
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Brand, 0, len(rows))
	for _, b := range rows {
		out = append(out, catalog.Brand{ID: b.ID, Name: b.Name})
	}
	return out, nil
}

// Categories returns all categories of the store in server order. Children
// may precede their parents; callers order the tree themselves.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := transport.FetchAllPages(ctx, c.ex, c.config.catalogURL("categories"), nil, c.config.PageSize, decodePage[bcCategory])
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Category, 0, len(rows))
	for _, cat := range rows {
		out = append(out, catalog.Category{
			ID:        cat.ID,
			ParentID:  cat.ParentID,
			Name:      cat.Name,
			SortOrder: cat.SortOrder,
			Visible:   cat.IsVisible,
		})
	}
	return out, nil
}

// Products returns all products with variants, options, custom fields and
// images attached in a single walk.
func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	query := url.Values{}
	query.Set("include", "variants,options,custom_fields,images")

	rows, err := transport.FetchAllPages(ctx, c.ex, c.config.catalogURL("products"), query, c.config.PageSize, decodePage[bcProduct])
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.toDomain())
	}
	return out, nil
}

// Ensure Client implements SourceCatalog
var _ catalog.SourceCatalog = (*Client)(nil)
