// Package testutil provides shared test helpers for packages that need storage.
package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/smart-categorizer/internal/model"
	"github.com/Veraticus/smart-categorizer/internal/service"
	"github.com/Veraticus/smart-categorizer/internal/storage"
)

// ErrWriteFailed is returned by FailingStorage for every write.
var ErrWriteFailed = errors.New("simulated write failure")

// TestDB represents a migrated in-memory test database.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup      func(context.Context, service.Storage) error
	CustomCategories []model.CustomCategory
	Corrections      []model.FeedbackCorrection
	SkipMigrations   bool
}

// SetupTestDB creates a new in-memory test database. It automatically handles
// migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	for i := range opts.CustomCategories {
		cat := opts.CustomCategories[i]
		if err := store.SaveCustomCategory(ctx, &cat); err != nil {
			t.Fatalf("failed to seed custom category %q: %v", cat.Name, err)
		}
	}

	for _, correction := range opts.Corrections {
		if err := store.SaveCorrection(ctx, correction); err != nil {
			t.Fatalf("failed to seed correction %q: %v", correction.SampleText, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// MustListCustomCategories returns every stored custom category or fails the test.
func (db *TestDB) MustListCustomCategories() []model.CustomCategory {
	db.t.Helper()
	cats, err := db.Storage.ListCustomCategories(context.Background())
	if err != nil {
		db.t.Fatalf("failed to list custom categories: %v", err)
	}
	return cats
}

// MustLoadCorrections returns every stored correction or fails the test.
func (db *TestDB) MustLoadCorrections() []model.FeedbackCorrection {
	db.t.Helper()
	corrections, err := db.Storage.LoadCorrections(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load corrections: %v", err)
	}
	return corrections
}

// FailingStorage wraps a Storage and fails every write, simulating an
// unwritable disk. Reads pass through.
type FailingStorage struct {
	service.Storage
}

// SaveCorrection always fails.
func (FailingStorage) SaveCorrection(context.Context, model.FeedbackCorrection) error {
	return ErrWriteFailed
}

// SaveMerchantOverride always fails.
func (FailingStorage) SaveMerchantOverride(context.Context, model.MerchantOverride) error {
	return ErrWriteFailed
}

// DeleteCorrectionsBefore always fails.
func (FailingStorage) DeleteCorrectionsBefore(context.Context, time.Time) (int64, error) {
	return 0, ErrWriteFailed
}

// SaveModel always fails.
func (FailingStorage) SaveModel(context.Context, string, []byte) error {
	return ErrWriteFailed
}

// SaveCustomCategory always fails.
func (FailingStorage) SaveCustomCategory(context.Context, *model.CustomCategory) error {
	return ErrWriteFailed
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
