// Package storage provides the data persistence layer for the categorizer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// Validation errors.
var (
	ErrNilContext            = errors.New("context cannot be nil")
	ErrEmptyString           = errors.New("string parameter cannot be empty")
	ErrNilParameter          = errors.New("parameter cannot be nil")
	ErrInvalidCorrection     = errors.New("invalid feedback correction")
	ErrInvalidOverride       = errors.New("invalid merchant override")
	ErrInvalidCustomCategory = errors.New("invalid custom category")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateCorrection(c model.FeedbackCorrection) error {
	switch {
	case c.Fingerprint == "":
		return fmt.Errorf("%w: missing fingerprint", ErrInvalidCorrection)
	case c.Category == "" || c.Subcategory == "":
		return fmt.Errorf("%w: missing category", ErrInvalidCorrection)
	case c.Count < 1:
		return fmt.Errorf("%w: count must be positive", ErrInvalidCorrection)
	case c.CorrectedAt.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrInvalidCorrection)
	}
	return nil
}

func validateOverride(o model.MerchantOverride) error {
	switch {
	case strings.TrimSpace(o.Merchant) == "":
		return fmt.Errorf("%w: missing merchant", ErrInvalidOverride)
	case o.Category == "" || o.Subcategory == "":
		return fmt.Errorf("%w: missing category", ErrInvalidOverride)
	}
	return nil
}

// validateCustomCategory checks identity fields only; malformed rules are
// stored as-is and skipped at match time.
func validateCustomCategory(c *model.CustomCategory) error {
	if c == nil {
		return fmt.Errorf("%w: custom category", ErrNilParameter)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidCustomCategory)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCustomCategory)
	}
	if c.BudgetLimit != nil && *c.BudgetLimit < 0 {
		return fmt.Errorf("%w: negative budget", ErrInvalidCustomCategory)
	}
	for i, rule := range c.Rules {
		if rule.Condition == nil {
			return fmt.Errorf("%w: rule %d has no condition", ErrInvalidCustomCategory, i)
		}
	}
	return nil
}
