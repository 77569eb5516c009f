// Package split decomposes multi-category purchases into category-tagged shares.
package split

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

// Handler decides whether a transaction spans several categories and splits it.
// It holds no state and is safe for concurrent use.
type Handler struct{}

// New returns a split handler.
func New() *Handler {
	return &Handler{}
}

// ShouldSplit reports whether the merchant is a multi-category retailer or the
// description names items from at least two distinct categories.
func (h *Handler) ShouldSplit(description, merchantName string) bool {
	name := strings.ToLower(merchantName)
	for _, retailer := range multiCategoryRetailers {
		if common.ContainsWord(name, retailer) {
			return true
		}
	}
	return len(matchPairs(description)) >= 2
}

// Split decomposes amount. Explicit line items are categorized one by one;
// otherwise every category named in the description gets an equal share.
// Item amounts always sum to amount.
func (h *Handler) Split(description string, amount float64, items []model.LineItem) model.SplitResult {
	if len(items) > 0 {
		return splitLineItems(amount, items)
	}

	matches := matchPairs(description)
	if len(matches) == 0 {
		return model.SplitResult{
			Method:         model.SplitNone,
			OriginalAmount: amount,
			Items: []model.SplitItem{{
				Description: description,
				Category:    DefaultPair.Category,
				Subcategory: DefaultPair.Subcategory,
				Amount:      amount,
				Percentage:  1,
			}},
		}
	}

	total := decimal.NewFromFloat(amount)
	n := int64(len(matches))
	share := total.DivRound(decimal.NewFromInt(n), 2)
	// The last share absorbs the rounding remainder.
	last := total.Sub(share.Mul(decimal.NewFromInt(n - 1)))

	out := make([]model.SplitItem, len(matches))
	for i, m := range matches {
		part := share
		if i == len(matches)-1 {
			part = last
		}
		out[i] = model.SplitItem{
			Description: common.TitleCase(m.term),
			Category:    m.pair.Category,
			Subcategory: m.pair.Subcategory,
			Amount:      part.InexactFloat64(),
			Percentage:  percentage(part, total),
		}
	}

	return model.SplitResult{
		Method:         model.SplitKeywordHeuristic,
		Items:          out,
		OriginalAmount: amount,
		WasSplit:       len(out) > 1,
	}
}

func splitLineItems(amount float64, items []model.LineItem) model.SplitResult {
	total := decimal.NewFromFloat(amount)
	parts := make([]decimal.Decimal, len(items))
	sum := decimal.Zero
	for i, item := range items {
		parts[i] = decimal.NewFromFloat(item.Amount).Round(2)
		sum = sum.Add(parts[i])
	}

	if residual := total.Sub(sum); !residual.IsZero() {
		lastIdx := len(parts) - 1
		parts[lastIdx] = parts[lastIdx].Add(residual)
		if residual.Abs().GreaterThan(decimal.NewFromFloat(0.5)) {
			common.LogDebug("line items disagree with transaction total", common.Fields{
				"residual": residual.String(),
			})
		}
	}

	out := make([]model.SplitItem, len(items))
	for i, item := range items {
		pair := matchItem(item.Name)
		out[i] = model.SplitItem{
			Description: item.Name,
			Category:    pair.Category,
			Subcategory: pair.Subcategory,
			Amount:      parts[i].InexactFloat64(),
			Percentage:  percentage(parts[i], total),
		}
	}

	return model.SplitResult{
		Method:         model.SplitLineItems,
		Items:          out,
		OriginalAmount: amount,
		WasSplit:       len(out) > 1,
	}
}

func percentage(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.DivRound(total, 4).InexactFloat64()
}
