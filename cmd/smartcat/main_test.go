package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/config"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

func TestParseCategoryPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantCat string
		wantSub string
		wantErr bool
	}{
		{name: "arrow", input: "Food & Dining > Groceries", wantCat: "Food & Dining", wantSub: "Groceries"},
		{name: "slash", input: "Shopping/Electronics", wantCat: "Shopping", wantSub: "Electronics"},
		{name: "slash inside subcategory", input: "Utilities > Gas (PNG/LPG)", wantCat: "Utilities", wantSub: "Gas (PNG/LPG)"},
		{name: "missing subcategory", input: "Shopping >", wantErr: true},
		{name: "no separator", input: "Shopping", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub, err := parseCategoryPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCat, cat)
			assert.Equal(t, tt.wantSub, sub)
		})
	}
}

func TestParseRule(t *testing.T) {
	cond, err := parseRule("merchant=GoDaddy")
	require.NoError(t, err)
	assert.Equal(t, model.RuleMerchant, cond.Kind())

	cond, err = parseRule("amount_range=1000-5000")
	require.NoError(t, err)
	assert.Equal(t, model.AmountRangeCondition{Min: 1000, Max: 5000}, cond)

	_, err = parseRule("keyword")
	assert.Error(t, err)

	_, err = parseRule("amount_above=lots")
	assert.Error(t, err)
}

func TestParseBudget(t *testing.T) {
	limit, err := parseBudget("none")
	require.NoError(t, err)
	assert.Nil(t, limit)

	limit, err = parseBudget("2500.50")
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.InDelta(t, 2500.50, *limit, 1e-9)

	_, err = parseBudget("plenty")
	assert.Error(t, err)
}

func TestPipelineConfig(t *testing.T) {
	v := viper.New()
	v.Set("pipeline.workers", 3)
	v.Set("classifier.review_threshold", 0.7)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	pcfg := pipelineConfig(cfg)

	assert.Equal(t, 3, pcfg.Workers)
	assert.Equal(t, cfg.MaxFeatures, pcfg.Classifier.MaxFeatures)
	assert.InDelta(t, 0.7, pcfg.Engine.ReviewThreshold, 1e-9)
	assert.Equal(t, cfg.RetrainThreshold, pcfg.Engine.RetrainThreshold)
	assert.True(t, pcfg.SeedCustomCategories)
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	input := filepath.Join(dir, "statement.json")
	require.NoError(t, os.WriteFile(input, []byte(
		`[{"transaction_id":"t1","date":"2024-03-01","description":"ZOMATO ORDER FOOD DELIVERY","amount":450}]`), 0o600))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"process", input, "--no-progress", "--db", filepath.Join(dir, "smartcat.db")})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var results []model.ProcessedTransaction
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].TransactionID)
	assert.Equal(t, "Food & Dining", results[0].Category)
	assert.Equal(t, "Zomato", results[0].MerchantName)
	assert.FileExists(t, filepath.Join(dir, "smartcat.db"))
}

func TestNotFoundBecomesUserError(t *testing.T) {
	err := notFound(fmt.Errorf("custom category %q: %w", "c9", common.ErrNotFound), "c9")

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, `"c9"`)
	assert.ErrorIs(t, err, common.ErrNotFound)

	other := errors.New("disk full")
	assert.Same(t, other, notFound(other, "c9"))
}
