package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestNewSQLiteStorage_Validation(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestCorrections(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	first := model.FeedbackCorrection{
		Fingerprint: "abc",
		SampleText:  "XYZ UNKNOWN STORE",
		Category:    "Home & Maintenance",
		Subcategory: "Rent",
		CorrectedAt: base,
		Count:       1,
	}
	require.NoError(t, store.SaveCorrection(ctx, first))

	updated := first
	updated.Count = 2
	updated.CorrectedAt = base.Add(time.Hour)
	require.NoError(t, store.SaveCorrection(ctx, updated))

	require.NoError(t, store.SaveCorrection(ctx, model.FeedbackCorrection{
		Fingerprint: "old",
		SampleText:  "old thing",
		Category:    "Shopping",
		Subcategory: "Electronics",
		CorrectedAt: base.AddDate(0, -6, 0),
		Count:       1,
	}))

	corrections, err := store.LoadCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 2)
	assert.Equal(t, "old", corrections[0].Fingerprint)
	assert.Equal(t, 2, corrections[1].Count)
	assert.True(t, corrections[1].CorrectedAt.Equal(updated.CorrectedAt))

	deleted, err := store.DeleteCorrectionsBefore(ctx, base.AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	corrections, err = store.LoadCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, "abc", corrections[0].Fingerprint)
}

func TestSaveCorrection_Invalid(t *testing.T) {
	store := createTestStorage(t)

	err := store.SaveCorrection(context.Background(), model.FeedbackCorrection{Fingerprint: "x"})
	assert.ErrorIs(t, err, ErrInvalidCorrection)
}

func TestMerchantOverrides(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMerchantOverride(ctx, model.MerchantOverride{Merchant: "swiggy", Category: "Food & Dining", Subcategory: "Restaurants"}))
	require.NoError(t, store.SaveMerchantOverride(ctx, model.MerchantOverride{Merchant: "swiggy", Category: "Food & Dining", Subcategory: "Groceries"}))

	overrides, err := store.LoadMerchantOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "Groceries", overrides[0].Subcategory)
	assert.False(t, overrides[0].UpdatedAt.IsZero())

	err = store.SaveMerchantOverride(ctx, model.MerchantOverride{Merchant: " "})
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestClassifierModels(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.LoadModel(ctx, "default")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SaveModel(ctx, "default", []byte("v1")))
	require.NoError(t, store.SaveModel(ctx, "default", []byte("v2")))

	blob, err := store.LoadModel(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), blob)

	assert.ErrorIs(t, store.SaveModel(ctx, "default", nil), ErrNilParameter)
}

func TestCustomCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	budget := 500000.0

	wedding := &model.CustomCategory{
		ID:          "wedding",
		Name:        "Wedding Fund Expenses",
		Color:       "#FF69B4",
		BudgetLimit: &budget,
		Tags:        []string{"wedding"},
		IsActive:    true,
		Rules: []model.TagRule{
			{ID: "wedding_rule_0", Condition: model.KeywordCondition{Keyword: "mehendi"}, Priority: 5},
			{ID: "wedding_rule_1", Condition: model.AmountRangeCondition{Min: 1000, Max: 90000}, Priority: 2, Exclusive: true},
		},
	}
	kids := &model.CustomCategory{ID: "kids", Name: "Baby & Kids", IsActive: true}

	require.NoError(t, store.SaveCustomCategory(ctx, wedding))
	require.NoError(t, store.SaveCustomCategory(ctx, kids))
	assert.Equal(t, int64(1), wedding.Position)
	assert.Equal(t, int64(2), kids.Position)

	wedding.Position = 0
	wedding.Rules = wedding.Rules[:1]
	require.NoError(t, store.SaveCustomCategory(ctx, wedding))
	assert.Equal(t, int64(1), wedding.Position, "resaving keeps creation order")

	list, err := store.ListCustomCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "wedding", list[0].ID)
	assert.Equal(t, "kids", list[1].ID)
	require.Len(t, list[0].Rules, 1)
	assert.Equal(t, model.KeywordCondition{Keyword: "mehendi"}, list[0].Rules[0].Condition)
	require.NotNil(t, list[0].BudgetLimit)
	assert.InDelta(t, budget, *list[0].BudgetLimit, 0.001)
	assert.Equal(t, []string{}, list[1].Tags)

	got, err := store.GetCustomCategory(ctx, "kids")
	require.NoError(t, err)
	assert.Nil(t, got.BudgetLimit)

	require.NoError(t, store.DeleteCustomCategory(ctx, "kids"))
	_, err = store.GetCustomCategory(ctx, "kids")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteCustomCategory(ctx, "kids"), common.ErrNotFound)
}

func TestCustomCategories_MalformedRuleSurvivesLoad(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCustomCategory(ctx, &model.CustomCategory{ID: "c", Name: "C", IsActive: true}))
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO custom_category_rules (category_id, ordinal, rule) VALUES ('c', 0, '{"rule_id":"bad","rule_type":"amount_above","value":"lots","priority":5}')`)
	require.NoError(t, err)

	got, err := store.GetCustomCategory(ctx, "c")
	require.NoError(t, err)
	require.Len(t, got.Rules, 1)
	assert.IsType(t, model.InvalidCondition{}, got.Rules[0].Condition)
}
