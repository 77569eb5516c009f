package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// Summary aggregates a batch this pipeline processed.
func (*Pipeline) Summary(results []model.ProcessedTransaction) model.SummaryReport {
	return Summarize(results)
}

// Summarize aggregates processed transactions. Spend totals count debits only;
// category totals count the absolute amount of every transaction.
func Summarize(results []model.ProcessedTransaction) model.SummaryReport {
	report := model.SummaryReport{
		Categories:        make(map[string]model.CategoryTotal),
		Subscriptions:     []model.SubscriptionEntry{},
		NeedsReviewIDs:    []string{},
		TotalTransactions: len(results),
	}

	totals := make(map[string]decimal.Decimal)
	spend := decimal.Zero

	for _, r := range results {
		amount := decimal.NewFromFloat(r.Amount)
		key := model.Label(r.Category, r.Subcategory)

		totals[key] = totals[key].Add(amount.Abs())
		entry := report.Categories[key]
		entry.Count++
		report.Categories[key] = entry

		if r.Amount > 0 {
			spend = spend.Add(amount)
			if r.MerchantIsSubscription {
				report.Subscriptions = append(report.Subscriptions, model.SubscriptionEntry{
					Merchant: r.MerchantName,
					Amount:   r.Amount,
				})
			}
		}
		if r.NeedsReview {
			report.NeedsReviewIDs = append(report.NeedsReviewIDs, r.TransactionID)
		}
		if r.IsSplit {
			report.SplitTransactions++
		}
	}

	for key, total := range totals {
		entry := report.Categories[key]
		entry.Total = total.Round(2).InexactFloat64()
		report.Categories[key] = entry
	}
	report.TotalSpend = spend.Round(2).InexactFloat64()
	report.NeedsReviewCount = len(report.NeedsReviewIDs)
	return report
}
