package engine

import (
	"github.com/Veraticus/smart-categorizer/internal/classification"
	"github.com/Veraticus/smart-categorizer/internal/feedback"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

// Input is what every strategy sees for one transaction.
type Input struct {
	Merchant    *model.MerchantRecord
	Description string
	Amount      float64
}

// Decision is a definite categorization made by a strategy.
type Decision struct {
	Category    string
	Subcategory string
	Method      model.Method
	Confidence  float64
	NeedsReview bool
}

// Strategy decides a category or declines so the next one is tried.
type Strategy interface {
	Decide(in Input) (Decision, bool)
}

// OverrideStrategy replays user corrections.
type OverrideStrategy struct {
	Feedback *feedback.Store
}

// Decide implements Strategy.
func (s OverrideStrategy) Decide(in Input) (Decision, bool) {
	merchantName := ""
	if in.Merchant != nil {
		merchantName = in.Merchant.Name
	}
	cat, sub, ok := s.Feedback.CheckOverride(in.Description, merchantName)
	if !ok {
		return Decision{}, false
	}
	return Decision{Category: cat, Subcategory: sub, Method: model.MethodUserOverride, Confidence: 1.0}, true
}

// DirectoryStrategy uses the merchant found in the directory.
type DirectoryStrategy struct{}

// Decide implements Strategy.
func (DirectoryStrategy) Decide(in Input) (Decision, bool) {
	if in.Merchant == nil {
		return Decision{}, false
	}
	return Decision{
		Category:    in.Merchant.Category,
		Subcategory: in.Merchant.Subcategory,
		Method:      model.MethodMerchantDB,
		Confidence:  0.95,
	}, true
}

// StatisticalStrategy always decides, using the classifier's prediction.
type StatisticalStrategy struct {
	Classifier      *classification.Classifier
	ReviewThreshold float64
}

// Decide implements Strategy.
func (s StatisticalStrategy) Decide(in Input) (Decision, bool) {
	p := s.Classifier.Predict(in.Description)
	return Decision{
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Method:      model.MethodMLModel,
		Confidence:  p.Confidence,
		NeedsReview: p.Confidence < s.ReviewThreshold,
	}, true
}
