package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RuleKind identifies the condition a TagRule evaluates.
type RuleKind string

// Rule kind constants.
const (
	RuleKeyword          RuleKind = "keyword"
	RuleMerchant         RuleKind = "merchant"
	RuleAmountRange      RuleKind = "amount_range"
	RuleAmountAbove      RuleKind = "amount_above"
	RuleAmountBelow      RuleKind = "amount_below"
	RuleRegex            RuleKind = "regex"
	RuleDayOfWeek        RuleKind = "day_of_week"
	RuleOriginalCategory RuleKind = "original_category"
)

// Rule priority bounds. 1 is the highest priority.
const (
	MinRulePriority     = 1
	MaxRulePriority     = 10
	DefaultRulePriority = 5
)

// ErrMalformedRule is returned when a rule value does not fit its kind.
var ErrMalformedRule = errors.New("malformed rule value")

// RuleInput is the transaction view a rule condition is evaluated against.
type RuleInput struct {
	Date             time.Time
	Description      string
	MerchantName     string
	OriginalCategory string
	Amount           float64
}

// Condition is one kind of rule test with its own typed payload.
type Condition interface {
	Kind() RuleKind
	Matches(in RuleInput) bool
	// Value returns the JSON-encodable payload of the condition.
	Value() any
}

// KeywordCondition matches descriptions containing a keyword.
type KeywordCondition struct{ Keyword string }

// Kind implements Condition.
func (KeywordCondition) Kind() RuleKind { return RuleKeyword }

// Matches implements Condition.
func (c KeywordCondition) Matches(in RuleInput) bool {
	return containsFold(in.Description, c.Keyword)
}

// Value implements Condition.
func (c KeywordCondition) Value() any { return c.Keyword }

// MerchantCondition matches merchant names containing a value.
type MerchantCondition struct{ Merchant string }

// Kind implements Condition.
func (MerchantCondition) Kind() RuleKind { return RuleMerchant }

// Matches implements Condition.
func (c MerchantCondition) Matches(in RuleInput) bool {
	return in.MerchantName != "" && containsFold(in.MerchantName, c.Merchant)
}

// Value implements Condition.
func (c MerchantCondition) Value() any { return c.Merchant }

// AmountRangeCondition matches amounts within [Min, Max].
type AmountRangeCondition struct{ Min, Max float64 }

// Kind implements Condition.
func (AmountRangeCondition) Kind() RuleKind { return RuleAmountRange }

// Matches implements Condition.
func (c AmountRangeCondition) Matches(in RuleInput) bool {
	return in.Amount >= c.Min && in.Amount <= c.Max
}

// Value implements Condition.
func (c AmountRangeCondition) Value() any { return [2]float64{c.Min, c.Max} }

// AmountAboveCondition matches amounts strictly above a threshold.
type AmountAboveCondition struct{ Threshold float64 }

// Kind implements Condition.
func (AmountAboveCondition) Kind() RuleKind { return RuleAmountAbove }

// Matches implements Condition.
func (c AmountAboveCondition) Matches(in RuleInput) bool { return in.Amount > c.Threshold }

// Value implements Condition.
func (c AmountAboveCondition) Value() any { return c.Threshold }

// AmountBelowCondition matches amounts strictly below a threshold.
type AmountBelowCondition struct{ Threshold float64 }

// Kind implements Condition.
func (AmountBelowCondition) Kind() RuleKind { return RuleAmountBelow }

// Matches implements Condition.
func (c AmountBelowCondition) Matches(in RuleInput) bool { return in.Amount < c.Threshold }

// Value implements Condition.
func (c AmountBelowCondition) Value() any { return c.Threshold }

// RegexCondition matches descriptions against a case-insensitive pattern.
type RegexCondition struct {
	re      *regexp.Regexp
	Pattern string
}

// NewRegexCondition compiles pattern into a condition.
func NewRegexCondition(pattern string) (RegexCondition, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return RegexCondition{}, fmt.Errorf("%w: regex %q: %w", ErrMalformedRule, pattern, err)
	}
	return RegexCondition{Pattern: pattern, re: re}, nil
}

// Kind implements Condition.
func (RegexCondition) Kind() RuleKind { return RuleRegex }

// Matches implements Condition.
func (c RegexCondition) Matches(in RuleInput) bool {
	return c.re != nil && c.re.MatchString(strings.ToLower(in.Description))
}

// Value implements Condition.
func (c RegexCondition) Value() any { return c.Pattern }

// DayOfWeekCondition matches transactions dated on a weekday.
type DayOfWeekCondition struct{ Day time.Weekday }

// Kind implements Condition.
func (DayOfWeekCondition) Kind() RuleKind { return RuleDayOfWeek }

// Matches implements Condition.
func (c DayOfWeekCondition) Matches(in RuleInput) bool {
	return !in.Date.IsZero() && in.Date.Weekday() == c.Day
}

// Value implements Condition.
func (c DayOfWeekCondition) Value() any { return strings.ToLower(c.Day.String()) }

// OriginalCategoryCondition matches the base categorization's category.
type OriginalCategoryCondition struct{ Category string }

// Kind implements Condition.
func (OriginalCategoryCondition) Kind() RuleKind { return RuleOriginalCategory }

// Matches implements Condition.
func (c OriginalCategoryCondition) Matches(in RuleInput) bool {
	return in.OriginalCategory != "" && containsFold(in.OriginalCategory, c.Category)
}

// Value implements Condition.
func (c OriginalCategoryCondition) Value() any { return c.Category }

// InvalidCondition holds a rule whose stored value could not be decoded.
// It never matches, so one bad rule does not break its category.
type InvalidCondition struct {
	Err      error
	RuleKind RuleKind
	Raw      json.RawMessage
}

// Kind implements Condition.
func (c InvalidCondition) Kind() RuleKind { return c.RuleKind }

// Matches implements Condition.
func (InvalidCondition) Matches(RuleInput) bool { return false }

// Value implements Condition.
func (c InvalidCondition) Value() any { return c.Raw }

// TagRule is a prioritized condition within a custom category.
type TagRule struct {
	Condition Condition
	ID        string
	Priority  int
	Exclusive bool
}

// Validate checks the rule's priority bounds and payload.
func (r TagRule) Validate() error {
	if r.Condition == nil {
		return fmt.Errorf("%w: rule %q has no condition", ErrMalformedRule, r.ID)
	}
	if invalid, ok := r.Condition.(InvalidCondition); ok {
		return invalid.Err
	}
	if r.Priority < MinRulePriority || r.Priority > MaxRulePriority {
		return fmt.Errorf("%w: priority %d outside %d-%d", ErrMalformedRule, r.Priority, MinRulePriority, MaxRulePriority)
	}
	return nil
}

// Score is the weight a matched rule adds to its category.
func (r TagRule) Score() int {
	return MaxRulePriority + 1 - r.Priority
}

type tagRuleJSON struct {
	ID        string          `json:"rule_id"`
	Type      RuleKind        `json:"rule_type"`
	Value     json.RawMessage `json:"value"`
	Priority  int             `json:"priority"`
	Exclusive bool            `json:"is_exclusive"`
}

// MarshalJSON encodes the rule with its kind-specific value.
func (r TagRule) MarshalJSON() ([]byte, error) {
	if r.Condition == nil {
		return nil, fmt.Errorf("%w: rule %q has no condition", ErrMalformedRule, r.ID)
	}
	var raw json.RawMessage
	if invalid, ok := r.Condition.(InvalidCondition); ok {
		raw = invalid.Raw
	} else {
		b, err := json.Marshal(r.Condition.Value())
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule value: %w", err)
		}
		raw = b
	}
	return json.Marshal(tagRuleJSON{
		ID:        r.ID,
		Type:      r.Condition.Kind(),
		Value:     raw,
		Priority:  r.Priority,
		Exclusive: r.Exclusive,
	})
}

// UnmarshalJSON decodes a rule. A value that does not fit its kind yields an
// InvalidCondition instead of an error.
func (r *TagRule) UnmarshalJSON(data []byte) error {
	var aux tagRuleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ID = aux.ID
	r.Priority = aux.Priority
	r.Exclusive = aux.Exclusive
	r.Condition = DecodeCondition(aux.Type, aux.Value)
	return nil
}

// DecodeCondition builds the typed condition for kind from its raw JSON value.
func DecodeCondition(kind RuleKind, raw json.RawMessage) Condition {
	cond, err := decodeCondition(kind, raw)
	if err != nil {
		return InvalidCondition{RuleKind: kind, Raw: raw, Err: err}
	}
	return cond
}

func decodeCondition(kind RuleKind, raw json.RawMessage) (Condition, error) {
	switch kind {
	case RuleKeyword, RuleMerchant, RuleRegex, RuleDayOfWeek, RuleOriginalCategory:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s expects a string: %w", ErrMalformedRule, kind, err)
		}
		return NewCondition(kind, s)
	case RuleAmountAbove, RuleAmountBelow:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w: %s expects a number: %w", ErrMalformedRule, kind, err)
		}
		if kind == RuleAmountAbove {
			return AmountAboveCondition{Threshold: f}, nil
		}
		return AmountBelowCondition{Threshold: f}, nil
	case RuleAmountRange:
		var pair []float64
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return nil, fmt.Errorf("%w: %s expects [min, max]", ErrMalformedRule, kind)
		}
		if pair[0] > pair[1] {
			return nil, fmt.Errorf("%w: %s min %.2f above max %.2f", ErrMalformedRule, kind, pair[0], pair[1])
		}
		return AmountRangeCondition{Min: pair[0], Max: pair[1]}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rule type %q", ErrMalformedRule, kind)
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NewCondition builds a condition for the string-valued rule kinds.
func NewCondition(kind RuleKind, value string) (Condition, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: %s value is empty", ErrMalformedRule, kind)
	}
	switch kind {
	case RuleKeyword:
		return KeywordCondition{Keyword: value}, nil
	case RuleMerchant:
		return MerchantCondition{Merchant: value}, nil
	case RuleOriginalCategory:
		return OriginalCategoryCondition{Category: value}, nil
	case RuleRegex:
		return NewRegexCondition(value)
	case RuleDayOfWeek:
		day, ok := weekdays[strings.ToLower(value)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrMalformedRule, value)
		}
		return DayOfWeekCondition{Day: day}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a text rule", ErrMalformedRule, kind)
	}
}

// CustomCategory is a user-defined category with auto-tagging rules.
type CustomCategory struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	BudgetLimit    *float64  `json:"budget_limit,omitempty"`
	ID             string    `json:"category_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Color          string    `json:"color"`
	Icon           string    `json:"icon"`
	ParentCategory string    `json:"parent_category,omitempty"`
	Rules          []TagRule `json:"rules"`
	Tags           []string  `json:"tags"`
	Position       int64     `json:"-"`
	IsActive       bool      `json:"is_active"`
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
