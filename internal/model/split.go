package model

// SplitMethod records how a transaction was decomposed.
type SplitMethod string

// Split method constants.
const (
	SplitNone             SplitMethod = "none"
	SplitLineItems        SplitMethod = "nlp_line_items"
	SplitKeywordHeuristic SplitMethod = "keyword_heuristic"
)

// SplitItem is one category-tagged share of a transaction.
type SplitItem struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Amount      float64 `json:"amount"`
	Percentage  float64 `json:"percentage"`
}

// SplitResult is the decomposition of a transaction.
// Item amounts always sum to OriginalAmount.
type SplitResult struct {
	Method         SplitMethod `json:"split_method"`
	Items          []SplitItem `json:"items"`
	OriginalAmount float64     `json:"original_amount"`
	WasSplit       bool        `json:"was_split"`
}
