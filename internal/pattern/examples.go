package pattern

import "github.com/Veraticus/smart-categorizer/internal/model"

func keywords(words ...string) []RuleSpec {
	rules := make([]RuleSpec, 0, len(words))
	for _, w := range words {
		rules = append(rules, RuleSpec{Condition: model.KeywordCondition{Keyword: w}})
	}
	return rules
}

func merchants(names ...string) []RuleSpec {
	rules := make([]RuleSpec, 0, len(names))
	for _, n := range names {
		rules = append(rules, RuleSpec{Condition: model.MerchantCondition{Merchant: n}})
	}
	return rules
}

// exampleCategories are created on first run so the feature is discoverable.
func exampleCategories() []CategorySpec {
	weddingBudget := 500000.0

	return []CategorySpec{
		{
			Name:        "Wedding Fund Expenses",
			Description: "All expenses related to my wedding planning",
			Color:       "#FF69B4",
			Icon:        "💍",
			BudgetLimit: &weddingBudget,
			Tags:        []string{"wedding", "one-time-event"},
			Rules: append(
				keywords("wedding", "mehendi", "baraat", "catering", "decoration",
					"photographer", "invitation cards", "shaadi", "vivah"),
				merchants("WeddingWire", "Shaadi.com")...,
			),
		},
		{
			Name:        "Side Business Costs",
			Description: "Expenses for my freelance / side business",
			Color:       "#4CAF50",
			Icon:        "💼",
			Tags:        []string{"business", "tax-deductible"},
			Rules: append(
				keywords("freelance", "client", "invoice", "hosting", "domain",
					"aws", "digital ocean", "gsuite", "figma", "notion"),
				merchants("GoDaddy", "Hostinger")...,
			),
		},
		{
			Name:        "Baby & Kids",
			Description: "Expenses for baby and children",
			Color:       "#87CEEB",
			Icon:        "🍼",
			Tags:        []string{"family", "kids"},
			Rules: append(
				keywords("baby", "diapers", "pampers", "huggies", "firstcry",
					"school bag", "uniform", "toys"),
				merchants("FirstCry")...,
			),
		},
	}
}
