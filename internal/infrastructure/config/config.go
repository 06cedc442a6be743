package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Source      SourceConfig
	Destination DestinationConfig
	Migration   MigrationConfig
	Log         LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// SourceConfig holds the source store connection settings
type SourceConfig struct {
	StoreHash      string
	AccessToken    string
	APIBaseURL     string
	PageSize       int
	TimeoutSeconds int
}

// DestinationConfig holds the destination store connection settings
type DestinationConfig struct {
	ShopDomain     string
	AccessToken    string
	APIVersion     string
	PageSize       int
	TimeoutSeconds int
}

// MigrationConfig holds conflict resolution policy defaults. CLI flags
// override these per run.
type MigrationConfig struct {
	NameStrategy  string // update, suffix, skip
	NameSuffix    string
	SKUStrategy   string // suffix, blank, skip
	SKUSuffix     string
	FieldStrategy string // pair, overwrite_by_name
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CARTBRIDGE_ prefix (e.g., CARTBRIDGE_SOURCE_ACCESS_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.cartbridge")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CARTBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Source: SourceConfig{
			StoreHash:      v.GetString("source.store_hash"),
			AccessToken:    v.GetString("source.access_token"),
			APIBaseURL:     v.GetString("source.api_base_url"),
			PageSize:       v.GetInt("source.page_size"),
			TimeoutSeconds: v.GetInt("source.timeout_seconds"),
		},
		Destination: DestinationConfig{
			ShopDomain:     v.GetString("destination.shop_domain"),
			AccessToken:    v.GetString("destination.access_token"),
			APIVersion:     v.GetString("destination.api_version"),
			PageSize:       v.GetInt("destination.page_size"),
			TimeoutSeconds: v.GetInt("destination.timeout_seconds"),
		},
		Migration: MigrationConfig{
			NameStrategy:  v.GetString("migration.name_strategy"),
			NameSuffix:    v.GetString("migration.name_suffix"),
			SKUStrategy:   v.GetString("migration.sku_strategy"),
			SKUSuffix:     v.GetString("migration.sku_suffix"),
			FieldStrategy: v.GetString("migration.field_strategy"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "cartbridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate performs validation on the configuration. Connection defaults
// (page sizes, timeouts, base URLs) are filled by the client configs; only
// operator mistakes are rejected here.
func (c *Config) validate() error {
	if c.Source.StoreHash == "" {
		return fmt.Errorf("source.store_hash is required")
	}
	if c.Source.AccessToken == "" {
		return fmt.Errorf("source.access_token is required")
	}
	if c.Destination.ShopDomain == "" {
		return fmt.Errorf("destination.shop_domain is required")
	}
	if c.Destination.AccessToken == "" {
		return fmt.Errorf("destination.access_token is required")
	}
	if c.Source.PageSize < 0 || c.Source.PageSize > 250 {
		return fmt.Errorf("source.page_size must be between 0 and 250 (0 delegates to the client default), got %d", c.Source.PageSize)
	}
	if c.Destination.PageSize < 0 || c.Destination.PageSize > 250 {
		return fmt.Errorf("destination.page_size must be between 0 and 250 (0 delegates to the client default), got %d", c.Destination.PageSize)
	}
	return nil
}
