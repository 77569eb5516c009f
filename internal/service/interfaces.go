// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// FeedbackRepository persists user corrections and merchant overrides.
type FeedbackRepository interface {
	LoadCorrections(ctx context.Context) ([]model.FeedbackCorrection, error)
	LoadMerchantOverrides(ctx context.Context) ([]model.MerchantOverride, error)
	SaveCorrection(ctx context.Context, correction model.FeedbackCorrection) error
	SaveMerchantOverride(ctx context.Context, override model.MerchantOverride) error
	DeleteCorrectionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ModelRepository persists serialized classifier models by name.
type ModelRepository interface {
	// LoadModel returns common.ErrNotFound when no model is stored under name.
	LoadModel(ctx context.Context, name string) ([]byte, error)
	SaveModel(ctx context.Context, name string, blob []byte) error
}

// CustomCategoryRepository persists user-defined categories and their rules.
type CustomCategoryRepository interface {
	// ListCustomCategories returns categories in creation order.
	ListCustomCategories(ctx context.Context) ([]model.CustomCategory, error)
	GetCustomCategory(ctx context.Context, id string) (*model.CustomCategory, error)
	// SaveCustomCategory inserts or replaces a category and all of its rules.
	SaveCustomCategory(ctx context.Context, category *model.CustomCategory) error
	DeleteCustomCategory(ctx context.Context, id string) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	FeedbackRepository
	ModelRepository
	CustomCategoryRepository

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
