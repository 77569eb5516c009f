package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smart-categorizer/internal/merchant"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

func newEnricher(t *testing.T) *Enricher {
	t.Helper()
	dir, err := merchant.Default()
	require.NoError(t, err)
	return New(dir)
}

func TestEnrich_ExactMatch(t *testing.T) {
	e := newEnricher(t)

	got := e.Enrich("ZOMATO ORDER FOOD DELIVERY", "Food & Dining", "Restaurants", 450)
	assert.Equal(t, "Zomato", got.Name)
	assert.Equal(t, model.SourceMerchantDB, got.Source)
	assert.InDelta(t, 0.95, got.Confidence, 1e-9)
	assert.Equal(t, "https://logos.zomato.com/logo.png", got.LogoURL, "record logo wins over the CDN table")
	assert.Equal(t, "food_delivery", got.BusinessType)
	assert.Equal(t, "Food Delivery Platform", got.BusinessTypeDisplay)
	assert.Equal(t, "Variable amount per transaction; typical range ₹150-1500", got.ChargeDescription)
	assert.False(t, got.IsSubscription)
	assert.True(t, got.IsOnline)
}

func TestEnrich_SubscriptionUsesLogoTable(t *testing.T) {
	e := newEnricher(t)

	got := e.Enrich("NETFLIX.COM", "Entertainment", "OTT Subscriptions", 649)
	assert.Equal(t, "Netflix", got.Name)
	assert.True(t, got.IsSubscription)
	assert.Equal(t, model.ChargeSubscription, got.ChargeType)
	assert.Equal(t, "https://upload.wikimedia.org/wikipedia/commons/7/7a/Logonetflix.png", got.LogoURL)
	assert.Equal(t, "₹149-649/month", got.TypicalRange)
}

func TestEnrich_FuzzyMatch(t *testing.T) {
	e := newEnricher(t)

	got := e.Enrich("Swigy", "Shopping", "Electronics", 300)
	assert.Equal(t, "Swiggy", got.Name)
	assert.Equal(t, model.SourceFuzzyMatch, got.Source)
	assert.InDelta(t, 0.9091*0.85, got.Confidence, 0.001)
	assert.Equal(t, "Food & Dining", got.Category, "fuzzy matches carry the merchant's own category")
}

func TestEnrich_InferredFromCategory(t *testing.T) {
	e := newEnricher(t)

	got := e.Enrich("XYZ UNKNOWN STORE payment ref 123", "Shopping", "Electronics", 1200)
	assert.Equal(t, "Xyz Unknown Store", got.Name)
	assert.Equal(t, model.SourcePatternInferred, got.Source)
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)
	assert.Equal(t, model.ChargeVariable, got.ChargeType)
	assert.Equal(t, "Shopping Business", got.BusinessTypeDisplay)
	assert.Equal(t, "Variable amount per transaction", got.ChargeDescription)
	assert.Empty(t, got.LogoURL)
	assert.True(t, got.IsIndian)
	assert.False(t, got.SupportsEMI)

	got = e.Enrich("Local Kirana bill", "Food & Dining", "Groceries", 200)
	assert.Equal(t, "Local Kirana", got.Name)
	assert.Equal(t, "Grocery Store", got.BusinessTypeDisplay)
}

func TestInferCharge(t *testing.T) {
	tests := []struct {
		subcategory string
		want        model.ChargeType
	}{
		{subcategory: "OTT Subscriptions", want: model.ChargeSubscription},
		{subcategory: "Gym Membership", want: model.ChargeSubscription},
		{subcategory: "Electricity", want: model.ChargeRecurringVariable},
		{subcategory: "Water Bill", want: model.ChargeRecurringVariable},
		{subcategory: "Loan EMI", want: model.ChargeSubscription},
		{subcategory: "Insurance Premium", want: model.ChargeSubscription},
		{subcategory: "Restaurants", want: model.ChargeVariable},
	}

	for _, tt := range tests {
		t.Run(tt.subcategory, func(t *testing.T) {
			assert.Equal(t, tt.want, inferCharge(tt.subcategory))
		})
	}
}

func TestExtractName(t *testing.T) {
	assert.Equal(t, "Sharma Sweets Corner", extractName("SHARMA SWEETS CORNER MG ROAD"))
	assert.Equal(t, "UPI/123", extractName("UPI/123"))
	assert.Equal(t, "Kirana", extractName("kirana purchase 55"))
}
