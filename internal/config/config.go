package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/smart-categorizer/internal/common"
)

// Config holds the runtime settings of the categorization pipeline.
type Config struct {
	DatabasePath          string
	MerchantsFile         string
	LogLevel              string
	LogFormat             string
	MaxFeatures           int
	NGramMax              int
	ReviewThreshold       float64
	RetrainThreshold      int
	FeedbackRetention     time.Duration
	LargeExpenseThreshold float64
	Workers               int
	SeedCustomCategories  bool
}

// SetDefaults registers default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/smartcat/smartcat.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("classifier.max_features", 5000)
	v.SetDefault("classifier.ngram_max", 3)
	v.SetDefault("classifier.review_threshold", 0.60)
	v.SetDefault("feedback.retrain_threshold", 20)
	v.SetDefault("feedback.retention", "0s")
	v.SetDefault("merchants.file", "")
	v.SetDefault("custom_categories.seed_examples", true)
	v.SetDefault("pipeline.large_expense_threshold", 10000.0)
	v.SetDefault("pipeline.workers", 1)
}

// Load reads configuration from v, applying defaults for missing keys.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DatabasePath:          ExpandPath(v.GetString("database.path")),
		MerchantsFile:         ExpandPath(v.GetString("merchants.file")),
		LogLevel:              v.GetString("logging.level"),
		LogFormat:             v.GetString("logging.format"),
		MaxFeatures:           v.GetInt("classifier.max_features"),
		NGramMax:              v.GetInt("classifier.ngram_max"),
		ReviewThreshold:       v.GetFloat64("classifier.review_threshold"),
		RetrainThreshold:      v.GetInt("feedback.retrain_threshold"),
		FeedbackRetention:     v.GetDuration("feedback.retention"),
		LargeExpenseThreshold: v.GetFloat64("pipeline.large_expense_threshold"),
		Workers:               v.GetInt("pipeline.workers"),
		SeedCustomCategories:  v.GetBool("custom_categories.seed_examples"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that numeric settings are within usable bounds.
func (c *Config) Validate() error {
	switch {
	case c.DatabasePath == "":
		return fmt.Errorf("%w: database.path is required", common.ErrInvalidConfig)
	case c.MaxFeatures <= 0:
		return fmt.Errorf("%w: classifier.max_features must be positive", common.ErrInvalidConfig)
	case c.NGramMax < 1:
		return fmt.Errorf("%w: classifier.ngram_max must be at least 1", common.ErrInvalidConfig)
	case c.ReviewThreshold < 0 || c.ReviewThreshold > 1:
		return fmt.Errorf("%w: classifier.review_threshold must be within [0,1]", common.ErrInvalidConfig)
	case c.RetrainThreshold <= 0:
		return fmt.Errorf("%w: feedback.retrain_threshold must be positive", common.ErrInvalidConfig)
	case c.FeedbackRetention < 0:
		return fmt.Errorf("%w: feedback.retention cannot be negative", common.ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: pipeline.workers must be at least 1", common.ErrInvalidConfig)
	}
	return nil
}
