package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateCategory checks a custom category before it is stored.
func ValidateCategory(cat *model.CustomCategory) error {
	if cat == nil {
		return fmt.Errorf("%w: category is nil", common.ErrInvalidRule)
	}
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("%w: category name is empty", common.ErrInvalidRule)
	}
	if cat.Color != "" && !hexColor.MatchString(cat.Color) {
		return fmt.Errorf("%w: color %q is not #RRGGBB", common.ErrInvalidRule, cat.Color)
	}
	if cat.BudgetLimit != nil && *cat.BudgetLimit < 0 {
		return fmt.Errorf("%w: budget %.2f is negative", common.ErrInvalidRule, *cat.BudgetLimit)
	}
	for _, rule := range cat.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("%w: %w", common.ErrInvalidRule, err)
		}
	}
	return nil
}

// ParseCondition builds a condition from its kind and a textual value.
// Amount ranges are written "min-max" or "min,max".
func ParseCondition(kind model.RuleKind, value string) (model.Condition, error) {
	value = strings.TrimSpace(value)

	switch kind {
	case model.RuleAmountAbove, model.RuleAmountBelow:
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number, got %q", common.ErrInvalidRule, kind, value)
		}
		if kind == model.RuleAmountAbove {
			return model.AmountAboveCondition{Threshold: threshold}, nil
		}
		return model.AmountBelowCondition{Threshold: threshold}, nil

	case model.RuleAmountRange:
		lo, hi, ok := strings.Cut(value, ",")
		if !ok {
			lo, hi, ok = strings.Cut(value, "-")
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s expects min-max, got %q", common.ErrInvalidRule, kind, value)
		}
		minAmount, errMin := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		maxAmount, errMax := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if errMin != nil || errMax != nil {
			return nil, fmt.Errorf("%w: %s expects numbers, got %q", common.ErrInvalidRule, kind, value)
		}
		if minAmount > maxAmount {
			return nil, fmt.Errorf("%w: %s min above max", common.ErrInvalidRule, kind)
		}
		return model.AmountRangeCondition{Min: minAmount, Max: maxAmount}, nil

	default:
		cond, err := model.NewCondition(kind, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidRule, err)
		}
		return cond, nil
	}
}
