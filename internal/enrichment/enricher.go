// Package enrichment attaches merchant metadata to categorized transactions.
package enrichment

import (
	"regexp"
	"strings"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/merchant"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

const (
	exactConfidence    = 0.95
	fuzzyScale         = 0.85
	inferredConfidence = 0.5

	// FuzzyThreshold is the similarity a fuzzy match must exceed.
	FuzzyThreshold = 0.75
)

var noiseSuffix = regexp.MustCompile(`(?i)(upi|payment|purchase|order|txn|ref|transfer|bill|pay).*`)

// Enricher resolves merchant metadata by exact match, fuzzy match, or
// inference from the predicted category.
type Enricher struct {
	directory *merchant.Directory
}

// New creates an enricher over directory.
func New(directory *merchant.Directory) *Enricher {
	return &Enricher{directory: directory}
}

// Enrich returns merchant metadata for description.
func (e *Enricher) Enrich(description, category, subcategory string, amount float64) model.EnrichedMerchant {
	if rec, ok := e.directory.Find(description); ok {
		return fromRecord(rec, exactConfidence, model.SourceMerchantDB)
	}

	if rec, score := e.directory.FuzzyMatch(description); rec != nil && score > FuzzyThreshold {
		return fromRecord(rec, score*fuzzyScale, model.SourceFuzzyMatch)
	}

	common.LogDebug("merchant inferred from category", common.Fields{"category": category, "amount": amount})
	return infer(description, category, subcategory)
}

func fromRecord(rec *model.MerchantRecord, confidence float64, source model.EnrichmentSource) model.EnrichedMerchant {
	display, ok := businessTypeDisplay[rec.BusinessType]
	if !ok {
		display = rec.BusinessType
	}

	chargeDesc, ok := chargeDescriptions[rec.ChargeType]
	if !ok {
		chargeDesc = "Variable charge"
	}
	if rec.TypicalRange != "" {
		chargeDesc += "; typical range " + rec.TypicalRange
	}

	logo := rec.LogoURL
	if logo == "" {
		logo = logoFor(rec.Name)
	}

	return model.EnrichedMerchant{
		Name:                rec.Name,
		LogoURL:             logo,
		BusinessType:        rec.BusinessType,
		BusinessTypeDisplay: display,
		ChargeType:          rec.ChargeType,
		ChargeDescription:   chargeDesc,
		TypicalRange:        rec.TypicalRange,
		Category:            rec.Category,
		Subcategory:         rec.Subcategory,
		Source:              source,
		Confidence:          confidence,
		IsOnline:            rec.IsOnline,
		IsIndian:            rec.IsIndian,
		SupportsEMI:         rec.SupportsEMI,
		IsSubscription:      rec.ChargeType == model.ChargeSubscription,
	}
}

func infer(description, category, subcategory string) model.EnrichedMerchant {
	charge := inferCharge(subcategory)

	display, ok := inferredBusinessTypes[pair{category, subcategory}]
	if !ok {
		display = category + " Business"
	}

	return model.EnrichedMerchant{
		Name:                extractName(description),
		BusinessTypeDisplay: display,
		ChargeType:          charge,
		ChargeDescription:   chargeDescriptions[charge],
		Category:            category,
		Subcategory:         subcategory,
		Source:              model.SourcePatternInferred,
		Confidence:          inferredConfidence,
		IsOnline:            true,
		IsIndian:            true,
		IsSubscription:      charge == model.ChargeSubscription,
	}
}

func inferCharge(subcategory string) model.ChargeType {
	lower := strings.ToLower(subcategory)
	for _, bucket := range chargeBuckets {
		if common.ContainsAny(lower, bucket.fragments) {
			return bucket.charge
		}
	}
	return model.ChargeVariable
}

// extractName drops everything from the first transaction-noise word on and
// title-cases up to three remaining words.
func extractName(description string) string {
	cleaned := strings.TrimSpace(noiseSuffix.ReplaceAllString(description, ""))
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		runes := []rune(description)
		if len(runes) > 30 {
			runes = runes[:30]
		}
		return string(runes)
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return common.TitleCase(strings.Join(words, " "))
}

func logoFor(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range logoCDN {
		if strings.Contains(lower, entry.key) {
			return entry.url
		}
	}
	return ""
}
