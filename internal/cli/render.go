package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// FormatAmount renders an amount in rupees with thousands grouping.
func FormatAmount(amount float64) string {
	p := message.NewPrinter(language.English)
	if amount < 0 {
		return "-₹" + p.Sprintf("%.2f", -amount)
	}
	return "₹" + p.Sprintf("%.2f", amount)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// RenderSummary renders a batch summary report.
func RenderSummary(report model.SummaryReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Transactions: %d\n", report.TotalTransactions)
	fmt.Fprintf(&b, "Total spend:  %s\n", FormatAmount(report.TotalSpend))
	if report.SplitTransactions > 0 {
		fmt.Fprintf(&b, "%s Split:      %d\n", SplitIcon, report.SplitTransactions)
	}
	if report.NeedsReviewCount > 0 {
		b.WriteString(FormatWarning(fmt.Sprintf("%d need review: %s",
			report.NeedsReviewCount, strings.Join(report.NeedsReviewIDs, ", "))))
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(report.Categories))
	for key := range report.Categories {
		keys = append(keys, key)
	}
	// Largest totals first; ties alphabetically.
	slices.SortFunc(keys, func(a, b string) int {
		ta, tb := report.Categories[a].Total, report.Categories[b].Total
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		}
		return strings.Compare(a, b)
	})

	categories := newTable("Category", "Count", "Total")
	for _, key := range keys {
		c := report.Categories[key]
		categories.Row(key, fmt.Sprint(c.Count), FormatAmount(c.Total))
	}
	b.WriteString("\n")
	b.WriteString(categories.String())

	if len(report.Subscriptions) > 0 {
		subs := newTable("Subscription", "Amount")
		for _, s := range report.Subscriptions {
			subs.Row(s.Merchant, FormatAmount(s.Amount))
		}
		b.WriteString("\n\n")
		b.WriteString(subs.String())
	}

	return RenderBox(ChartIcon+" Summary", b.String())
}

// RenderTransactions renders processed transactions as a table.
func RenderTransactions(results []model.ProcessedTransaction) string {
	t := newTable("ID", "Date", "Amount", "Category", "Method", "Conf", "Merchant", "Flags")
	for _, r := range results {
		t.Row(
			r.TransactionID,
			r.Date,
			FormatAmount(r.Amount),
			model.Label(r.Category, r.Subcategory),
			string(r.Method),
			fmt.Sprintf("%.2f", r.Confidence),
			r.MerchantName,
			flags(r),
		)
	}
	return t.String()
}

func flags(r model.ProcessedTransaction) string {
	var out []string
	if r.IsSplit {
		out = append(out, SplitIcon)
	}
	if r.IsP2P {
		out = append(out, "p2p")
	}
	if r.MerchantIsSubscription {
		out = append(out, RepeatIcon)
	}
	if r.CustomCategoryName != "" {
		out = append(out, r.CustomCategoryIcon+" "+r.CustomCategoryName)
	}
	if r.NeedsReview {
		out = append(out, ReviewIcon)
	}
	return strings.Join(out, " ")
}

// RenderCustomCategories renders custom categories with their rule counts.
func RenderCustomCategories(categories []model.CustomCategory) string {
	if len(categories) == 0 {
		return FormatInfo("No custom categories defined")
	}

	t := newTable("ID", "Name", "Rules", "Budget", "Tags", "Active")
	for _, c := range categories {
		budget := "-"
		if c.BudgetLimit != nil {
			budget = FormatAmount(*c.BudgetLimit)
		}
		active := SuccessIcon
		if !c.IsActive {
			active = ErrorIcon
		}
		t.Row(c.ID, c.Icon+" "+c.Name, fmt.Sprint(len(c.Rules)), budget, strings.Join(c.Tags, ","), active)
	}
	return t.String()
}
