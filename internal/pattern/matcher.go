package pattern

import (
	"slices"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

// Matcher scores transactions against an immutable snapshot of custom categories.
type Matcher struct {
	categories []model.CustomCategory
}

// NewMatcher snapshots the active categories. Input order is the tie-break
// order, so callers pass categories in creation order.
func NewMatcher(categories []model.CustomCategory) *Matcher {
	m := &Matcher{}
	for _, cat := range categories {
		if !cat.IsActive {
			continue
		}
		cat.Rules = slices.Clone(cat.Rules)
		cat.Tags = slices.Clone(cat.Tags)
		// Stable keeps insertion order among rules of equal priority.
		slices.SortStableFunc(cat.Rules, func(a, b Rule) int {
			return a.Priority - b.Priority
		})
		m.categories = append(m.categories, cat)
	}
	return m
}

// Match evaluates every category and returns a copy of the one with the
// strictly highest score. Earlier categories win ties.
func (m *Matcher) Match(in model.RuleInput) *model.CustomCategory {
	best, bestScore := -1, 0
	for i := range m.categories {
		score, matched := evaluate(m.categories[i].Rules, in)
		if matched == 0 {
			continue
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return nil
	}

	winner := m.categories[best]
	common.LogDebug("custom category matched", common.Fields{
		"category": winner.ID,
		"score":    bestScore,
	})
	winner.Rules = slices.Clone(winner.Rules)
	winner.Tags = slices.Clone(winner.Tags)
	return &winner
}

// Len returns the number of active categories in the snapshot.
func (m *Matcher) Len() int {
	return len(m.categories)
}

// evaluate walks rules in priority order and sums the score of every match.
// An exclusive match ends the walk.
func evaluate(rules []Rule, in model.RuleInput) (score, matched int) {
	for _, rule := range rules {
		if rule.Condition == nil || !rule.Condition.Matches(in) {
			continue
		}
		matched++
		score += rule.Score()
		if rule.Exclusive {
			break
		}
	}
	return score, matched
}
