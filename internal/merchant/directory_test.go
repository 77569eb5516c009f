package merchant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

func defaultDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := Default()
	require.NoError(t, err)
	return dir
}

func TestDefault_LoadsSeed(t *testing.T) {
	dir := defaultDirectory(t)

	assert.Equal(t, 130, dir.Len())

	rec, ok := dir.Find("amazon")
	require.True(t, ok)
	assert.Equal(t, "Amazon India", rec.Name)
	assert.True(t, rec.SupportsEMI)
	assert.True(t, rec.IsOnline, "omitted flags default to true")
	assert.True(t, rec.IsIndian)
	require.NotNil(t, rec.SplitHint)
	assert.True(t, rec.SplitHint.Enabled)
}

func TestFind(t *testing.T) {
	dir := defaultDirectory(t)

	tests := []struct {
		name        string
		description string
		wantName    string
		wantFound   bool
	}{
		{name: "exact alias", description: "Zomato", wantName: "Zomato", wantFound: true},
		{name: "canonical name", description: "amazon india", wantName: "Amazon India", wantFound: true},
		{name: "partial alias", description: "ZOMATO ORDER FOOD DELIVERY", wantName: "Zomato", wantFound: true},
		{name: "longest alias wins", description: "paid via flipkart supermart today", wantName: "Flipkart Supermart", wantFound: true},
		{name: "unknown", description: "XYZ UNKNOWN STORE", wantFound: false},
		{name: "empty", description: "   ", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := dir.Find(tt.description)
			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				require.NotNil(t, rec)
				assert.Equal(t, tt.wantName, rec.Name)
			}
		})
	}
}

func TestFind_ReturnsCopies(t *testing.T) {
	dir := defaultDirectory(t)

	rec, ok := dir.Find("zomato")
	require.True(t, ok)
	rec.Aliases[0] = "mutated"
	rec.Category = "Mutated"

	again, ok := dir.Find("zomato")
	require.True(t, ok)
	assert.Equal(t, "zomato", again.Aliases[0])
	assert.Equal(t, "Food & Dining", again.Category)
}

func TestNew_LaterRecordWins(t *testing.T) {
	dir := New([]model.MerchantRecord{
		{Name: "First", Aliases: []string{"shared"}, Category: "A", Subcategory: "a"},
		{Name: "Second", Aliases: []string{"Shared"}, Category: "B", Subcategory: "b"},
	})

	rec, ok := dir.Find("shared")
	require.True(t, ok)
	assert.Equal(t, "Second", rec.Name)
	assert.True(t, dir.HasKey("FIRST"))
}

func TestFuzzyMatch(t *testing.T) {
	dir := defaultDirectory(t)

	tests := []struct {
		description string
		wantName    string
		minScore    float64
		maxScore    float64
	}{
		{description: "ZOMATOO ORDER", wantName: "Zomato", minScore: 0.95, maxScore: 0.97},
		{description: "Swigy", wantName: "Swiggy", minScore: 0.90, maxScore: 0.92},
		{description: "Netflx subscription renewal extra words", wantName: "Netflix", minScore: 0.71, maxScore: 0.72},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			rec, score := dir.FuzzyMatch(tt.description)
			require.NotNil(t, rec)
			assert.Equal(t, tt.wantName, rec.Name)
			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
		})
	}

	_, score := dir.FuzzyMatch("random local vendor xyz")
	assert.Less(t, score, 0.75)

	rec, score := dir.FuzzyMatch("")
	assert.Nil(t, rec)
	assert.Zero(t, score)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad charge type", yaml: "merchants:\n- {name: X, category: A, subcategory: B, charge_type: weekly}\n"},
		{name: "missing category", yaml: "merchants:\n- {name: X, charge_type: variable}\n"},
		{name: "missing name", yaml: "merchants:\n- {category: A, subcategory: B, charge_type: variable}\n"},
		{name: "not yaml", yaml: "merchants: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ExplicitFlags(t *testing.T) {
	dir, err := Load(strings.NewReader(`
merchants:
- name: Croma
  aliases: [croma]
  category: Shopping
  subcategory: Electronics
  charge_type: variable
  business_type: electronics_retail
  is_online: false
  is_indian: false
`))
	require.NoError(t, err)

	rec, ok := dir.Find("croma store")
	require.True(t, ok)
	assert.False(t, rec.IsOnline)
	assert.False(t, rec.IsIndian)
}
