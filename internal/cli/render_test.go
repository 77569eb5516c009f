package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		amount float64
	}{
		{name: "grouped", amount: 123456.5, want: "₹123,456.50"},
		{name: "small", amount: 9.99, want: "₹9.99"},
		{name: "credit", amount: -85000, want: "-₹85,000.00"},
		{name: "zero", amount: 0, want: "₹0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.amount))
		})
	}
}

func TestRenderSummary(t *testing.T) {
	report := model.SummaryReport{
		Categories: map[string]model.CategoryTotal{
			"Food & Dining > Food Delivery": {Total: 450, Count: 1},
			"Entertainment > Streaming":     {Total: 649, Count: 1},
		},
		Subscriptions:     []model.SubscriptionEntry{{Merchant: "Netflix", Amount: 649}},
		NeedsReviewIDs:    []string{"t9"},
		TotalTransactions: 3,
		TotalSpend:        1099,
		NeedsReviewCount:  1,
		SplitTransactions: 1,
	}

	out := RenderSummary(report)

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Transactions: 3")
	assert.Contains(t, out, "₹1,099.00")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "1 need review: t9")
	assert.Less(t, strings.Index(out, "Streaming"), strings.Index(out, "Food Delivery"),
		"larger totals render first")
}

func TestRenderSummaryEmpty(t *testing.T) {
	out := RenderSummary(model.SummaryReport{Categories: map[string]model.CategoryTotal{}})

	assert.Contains(t, out, "Transactions: 0")
	assert.NotContains(t, out, "need review")
	assert.NotContains(t, out, "Subscription")
}

func TestRenderTransactions(t *testing.T) {
	results := []model.ProcessedTransaction{
		{
			TransactionID:      "t1",
			Date:               "2024-03-01",
			Category:           "Food & Dining",
			Subcategory:        "Food Delivery",
			Method:             model.MethodMerchantDB,
			MerchantName:       "Zomato",
			CustomCategoryName: "Wedding Fund Expenses",
			CustomCategoryIcon: "💍",
			Amount:             450,
			Confidence:         0.95,
			NeedsReview:        true,
		},
	}

	out := RenderTransactions(results)

	assert.Contains(t, out, "t1")
	assert.Contains(t, out, "merchant_db")
	assert.Contains(t, out, "0.95")
	assert.Contains(t, out, "Zomato")
	assert.Contains(t, out, "Wedding Fund Expenses")
	assert.Contains(t, out, ReviewIcon)
}

func TestRenderCustomCategories(t *testing.T) {
	assert.Contains(t, RenderCustomCategories(nil), "No custom categories")

	budget := 500000.0
	out := RenderCustomCategories([]model.CustomCategory{
		{ID: "c1", Name: "Wedding Fund Expenses", Icon: "💍", BudgetLimit: &budget, Tags: []string{"wedding"}, IsActive: true},
		{ID: "c2", Name: "Side Business Costs", Icon: "💼"},
	})

	assert.Contains(t, out, "Wedding Fund Expenses")
	assert.Contains(t, out, "₹500,000.00")
	assert.Contains(t, out, "wedding")
	assert.Contains(t, out, "Side Business Costs")
}
