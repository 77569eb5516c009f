package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/smart-categorizer/internal/classification"
	"github.com/Veraticus/smart-categorizer/internal/config"
	"github.com/Veraticus/smart-categorizer/internal/engine"
	"github.com/Veraticus/smart-categorizer/internal/pipeline"
	"github.com/Veraticus/smart-categorizer/internal/storage"
)

// SMARTCAT_DATABASE_PATH maps to database.path.
var envKeyReplacer = strings.NewReplacer(".", "_")

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func pipelineConfig(cfg *config.Config) pipeline.Config {
	pcfg := pipeline.DefaultConfig()
	pcfg.MerchantsFile = cfg.MerchantsFile
	pcfg.Workers = cfg.Workers
	pcfg.SeedCustomCategories = cfg.SeedCustomCategories
	pcfg.Classifier = classification.Options{
		MaxFeatures: cfg.MaxFeatures,
		NGramMax:    cfg.NGramMax,
	}
	pcfg.Engine = engine.Config{
		ReviewThreshold:       cfg.ReviewThreshold,
		LargeExpenseThreshold: cfg.LargeExpenseThreshold,
		RetrainThreshold:      cfg.RetrainThreshold,
	}
	return pcfg
}

// openPipeline builds a pipeline over the configured database. The returned
// close function releases the database.
func openPipeline(ctx context.Context) (*pipeline.Pipeline, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}

	p, err := pipeline.New(ctx, pipelineConfig(cfg), store)
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}

	if cfg.FeedbackRetention > 0 {
		if _, err := p.PruneFeedback(ctx, cfg.FeedbackRetention); err != nil {
			slog.Warn("Failed to prune feedback", "error", err)
		}
	}
	return p, cfg, closeStore, nil
}

// parseCategoryPath splits "Category > Subcategory" or "Category/Subcategory".
func parseCategoryPath(path string) (string, string, error) {
	for _, sep := range []string{">", "/"} {
		if cat, sub, ok := strings.Cut(path, sep); ok {
			cat, sub = strings.TrimSpace(cat), strings.TrimSpace(sub)
			if cat == "" || sub == "" {
				break
			}
			return cat, sub, nil
		}
	}
	return "", "", fmt.Errorf("expected \"Category > Subcategory\", got %q", path)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path) //nolint:gosec // user supplied input file
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
