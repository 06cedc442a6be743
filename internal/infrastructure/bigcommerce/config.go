// Package bigcommerce implements the source side of a migration run against
// the BigCommerce v3 Catalog API.
package bigcommerce

import (
	"errors"
	"fmt"
)

// Config holds credentials and tuning for a BigCommerce store connection.
type Config struct {
	// StoreHash identifies the store, as found in the API path.
	StoreHash string
	// AccessToken is the API account access token.
	AccessToken string
	// APIBaseURL is the API host; overridable for tests.
	APIBaseURL string
	// PageSize is the page size used when walking collections.
	PageSize int
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

// DefaultAPIBaseURL is the production BigCommerce API host.
const DefaultAPIBaseURL = "https://api.bigcommerce.com"

// Errors for BigCommerce configuration
var (
	ErrConfigMissingStoreHash   = errors.New("bigcommerce: store hash is required")
	ErrConfigMissingAccessToken = errors.New("bigcommerce: access token is required")
)

// Validate validates the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.StoreHash == "" {
		return ErrConfigMissingStoreHash
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.PageSize <= 0 || c.PageSize > 250 {
		c.PageSize = 250
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// catalogURL builds a v3 catalog endpoint URL for this store.
func (c *Config) catalogURL(resource string) string {
	return fmt.Sprintf("%s/stores/%s/v3/catalog/%s", c.APIBaseURL, c.StoreHash, resource)
}
