package model

// Method indicates which source decided a categorization.
type Method string

// Categorization method constants. External classifiers may supply their own.
const (
	MethodUserOverride Method = "user_override"
	MethodMerchantDB   Method = "merchant_db"
	MethodMLModel      Method = "ml_model"
	MethodP2PDetector  Method = "p2p_detector"
)

// ReviewThreshold is the confidence below which a model prediction needs review.
const ReviewThreshold = 0.60

// CategorizationResult is the decision of the categorization cascade.
type CategorizationResult struct {
	Merchant    *MerchantRecord `json:"merchant,omitempty"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Method      Method          `json:"method"`
	Tags        []string        `json:"tags"`
	Amount      float64         `json:"amount"`
	Confidence  float64         `json:"confidence"`
	NeedsReview bool            `json:"needs_review"`
}

// Label joins a category pair the way the classifier and summaries key it.
func Label(category, subcategory string) string {
	return category + " > " + subcategory
}
