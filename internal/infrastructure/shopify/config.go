// Package shopify implements the destination side of a migration run against
// the Shopify REST Admin API.
package shopify

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds credentials and tuning for a Shopify shop connection.
type Config struct {
	// ShopDomain is the myshopify domain, with or without the suffix
	// ("example" and "example.myshopify.com" are both accepted).
	ShopDomain string
	// AccessToken is the Admin API access token.
	AccessToken string
	// APIVersion is the Admin API version segment.
	APIVersion string
	// APIBaseURL overrides the derived https://{shop}/admin/api/{version}
	// base; used by tests.
	APIBaseURL string
	// PageSize is the page size requested when walking collections.
	PageSize int
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

// DefaultAPIVersion is the Admin API version the client speaks.
const DefaultAPIVersion = "2024-01"

// Errors for Shopify configuration
var (
	ErrConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrConfigMissingAccessToken = errors.New("shopify: access token is required")
)

// Validate validates the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.ShopDomain == "" && c.APIBaseURL == "" {
		return ErrConfigMissingShopDomain
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.PageSize <= 0 || c.PageSize > 250 {
		c.PageSize = 250
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.APIBaseURL == "" {
		domain := c.ShopDomain
		if !strings.Contains(domain, ".") {
			domain += ".myshopify.com"
		}
		c.APIBaseURL = fmt.Sprintf("https://%s/admin/api/%s", domain, c.APIVersion)
	}
	return nil
}

// endpoint builds an Admin API endpoint URL.
func (c *Config) endpoint(resource string) string {
	return fmt.Sprintf("%s/%s.json", c.APIBaseURL, resource)
}
