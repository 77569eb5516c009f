// Package engine implements the categorization cascade for transactions.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/smart-categorizer/internal/classification"
	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/feedback"
	"github.com/Veraticus/smart-categorizer/internal/merchant"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

// Engine runs its strategies in order and returns the first decision.
type Engine struct {
	directory  *merchant.Directory
	feedback   *feedback.Store
	classifier *classification.Classifier
	strategies []Strategy
	seed       []model.TrainingExample
	config     Config
}

// Config holds configuration options for the engine.
type Config struct {
	ReviewThreshold       float64
	LargeExpenseThreshold float64
	RetrainThreshold      int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ReviewThreshold:       model.ReviewThreshold,
		LargeExpenseThreshold: 10000,
		RetrainThreshold:      feedback.DefaultRetrainThreshold,
	}
}

// New creates an engine that cascades override, directory and classifier.
// seed is the base corpus corrections are appended to when retraining.
func New(directory *merchant.Directory, store *feedback.Store, classifier *classification.Classifier,
	seed []model.TrainingExample, config Config,
) *Engine {
	return &Engine{
		directory:  directory,
		feedback:   store,
		classifier: classifier,
		seed:       seed,
		config:     config,
		strategies: []Strategy{
			OverrideStrategy{Feedback: store},
			DirectoryStrategy{},
			StatisticalStrategy{Classifier: classifier, ReviewThreshold: config.ReviewThreshold},
		},
	}
}

// Categorize classifies one description. amount is the absolute spend.
func (e *Engine) Categorize(description string, amount float64) model.CategorizationResult {
	in := Input{Description: description, Amount: amount}
	if rec, ok := e.directory.Find(description); ok {
		in.Merchant = rec
	}

	var decision Decision
	for _, s := range e.strategies {
		if d, ok := s.Decide(in); ok {
			decision = d
			break
		}
	}

	common.LogDebug("categorized", common.Fields{
		"method":     decision.Method,
		"category":   decision.Category,
		"confidence": decision.Confidence,
	})

	return model.CategorizationResult{
		Merchant:    in.Merchant,
		Description: description,
		Amount:      amount,
		Category:    decision.Category,
		Subcategory: decision.Subcategory,
		Method:      decision.Method,
		Confidence:  decision.Confidence,
		NeedsReview: decision.NeedsReview,
		Tags:        e.tags(decision.Subcategory, in.Merchant, amount),
	}
}

// ApplyCorrection remembers a user's correction and retrains the classifier
// once enough corrections have accumulated.
func (e *Engine) ApplyCorrection(ctx context.Context, description, merchantName, oldCategory, newCategory, newSubcategory string) {
	correction := e.feedback.RecordCorrection(ctx, description, merchantName, newCategory, newSubcategory)
	common.LogDebug("correction recorded", common.Fields{
		"from":  oldCategory,
		"to":    model.Label(newCategory, newSubcategory),
		"count": correction.Count,
	})

	if e.feedback.RetrainNeeded(e.config.RetrainThreshold) {
		if err := e.Retrain(ctx); err != nil {
			common.LogWarn(err, "retraining after correction failed", nil)
		}
	}
}

// Retrain fits the classifier on the seed corpus plus every stored correction.
func (e *Engine) Retrain(ctx context.Context) error {
	corrections := e.feedback.TrainingExamples()
	examples := make([]model.TrainingExample, 0, len(e.seed)+len(corrections))
	examples = append(examples, e.seed...)
	examples = append(examples, corrections...)

	if err := e.classifier.Train(ctx, examples); err != nil {
		return fmt.Errorf("failed to retrain classifier: %w", err)
	}
	return nil
}

func (e *Engine) tags(subcategory string, rec *model.MerchantRecord, amount float64) []string {
	var tags []string
	if rec != nil {
		if rec.ChargeType == model.ChargeSubscription {
			tags = append(tags, "subscription")
		}
		if rec.SupportsEMI {
			tags = append(tags, "emi-eligible")
		}
		if !rec.IsOnline {
			tags = append(tags, "offline-purchase")
		}
	}
	if amount > e.config.LargeExpenseThreshold {
		tags = append(tags, "large-expense")
	}
	if strings.Contains(subcategory, "OTT") || strings.Contains(strings.ToLower(subcategory), "subscription") {
		tags = append(tags, "recurring")
	}
	return tags
}
