package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	appmigration "github.com/cartbridge/cartbridge/internal/application/migration"
	"github.com/cartbridge/cartbridge/internal/domain/migration"
	"github.com/cartbridge/cartbridge/internal/infrastructure/bigcommerce"
	"github.com/cartbridge/cartbridge/internal/infrastructure/config"
	"github.com/cartbridge/cartbridge/internal/infrastructure/logger"
	"github.com/cartbridge/cartbridge/internal/infrastructure/shopify"
)

func main() {
	// Parse flags
	var (
		entities    string
		dryRun      bool
		ids         string
		nameFilter  string
		namePattern string
		afterID     int64
		limit       int
		logLevel    string
	)

	flag.StringVar(&entities, "entities", "", "Comma-separated entity kinds to migrate: brands,categories,products (default: all)")
	flag.BoolVar(&dryRun, "dry-run", false, "Compute and report decisions without writing to the destination")
	flag.StringVar(&ids, "ids", "", "Comma-separated source product IDs to migrate")
	flag.StringVar(&nameFilter, "name", "", "Only migrate products whose name contains this substring (case-insensitive)")
	flag.StringVar(&namePattern, "name-pattern", "", "Only migrate products whose name matches this regular expression")
	flag.Int64Var(&afterID, "after", 0, "Resume after the given source product ID")
	flag.IntVar(&limit, "limit", 0, "Migrate at most this many products (0 = no limit)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	log := logger.New(logger.Config{
		Level:  logLevel,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	opts, err := buildOptions(cfg, entities, dryRun, ids, nameFilter, namePattern, afterID, limit)
	if err != nil {
		log.Fatal("Invalid flags", zap.Error(err))
	}

	src, err := bigcommerce.NewClient(&bigcommerce.Config{
		StoreHash:      cfg.Source.StoreHash,
		AccessToken:    cfg.Source.AccessToken,
		APIBaseURL:     cfg.Source.APIBaseURL,
		PageSize:       cfg.Source.PageSize,
		TimeoutSeconds: cfg.Source.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to build source client", zap.Error(err))
	}

	dst, err := shopify.NewClient(&shopify.Config{
		ShopDomain:     cfg.Destination.ShopDomain,
		AccessToken:    cfg.Destination.AccessToken,
		APIVersion:     cfg.Destination.APIVersion,
		PageSize:       cfg.Destination.PageSize,
		TimeoutSeconds: cfg.Destination.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to build destination client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summaries, err := appmigration.New(src, dst, opts, log).Run(ctx)
	for _, s := range summaries {
		fmt.Println(s.String())
	}
	if err != nil {
		log.Fatal("Migration run failed", zap.Error(err))
	}
}

// buildOptions merges config-file policy defaults with the per-run flags.
func buildOptions(cfg *config.Config, entities string, dryRun bool, ids, nameFilter, namePattern string, afterID int64, limit int) (appmigration.Options, error) {
	opts := appmigration.Options{
		NameStrategy:  migration.NameStrategy(cfg.Migration.NameStrategy),
		NameSuffix:    cfg.Migration.NameSuffix,
		SKUStrategy:   migration.SKUStrategy(cfg.Migration.SKUStrategy),
		SKUSuffix:     cfg.Migration.SKUSuffix,
		FieldStrategy: migration.FieldStrategy(cfg.Migration.FieldStrategy),
		DryRun:        dryRun,
		Filter: migration.Filter{
			NameContains: nameFilter,
			NamePattern:  namePattern,
			AfterID:      afterID,
			Limit:        limit,
		},
	}

	if entities != "" {
		for _, kind := range strings.Split(entities, ",") {
			kind = strings.TrimSpace(kind)
			if kind != "" {
				opts.Kinds = append(opts.Kinds, kind)
			}
		}
	}

	if ids != "" {
		for _, raw := range strings.Split(ids, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			var id int64
			if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id <= 0 {
				return appmigration.Options{}, fmt.Errorf("invalid product id %q", raw)
			}
			opts.Filter.IDs = append(opts.Filter.IDs, id)
		}
	}

	return opts, nil
}
