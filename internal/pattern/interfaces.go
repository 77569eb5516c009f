// Package pattern provides user-defined custom categories and the rule engine
// that auto-tags transactions into them.
package pattern

import "github.com/Veraticus/smart-categorizer/internal/model"

// CategoryMatcher picks the custom category a transaction belongs to.
type CategoryMatcher interface {
	// Match returns the best matching active category, or nil when no rule matches.
	Match(in model.RuleInput) *model.CustomCategory
}

// Rule is an alias to the model.TagRule type for convenience.
type Rule = model.TagRule
