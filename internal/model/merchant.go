package model

// ChargeType describes how a merchant typically bills.
type ChargeType string

// Charge type constants.
const (
	ChargeSubscription      ChargeType = "subscription"
	ChargeOneTime           ChargeType = "one_time"
	ChargeVariable          ChargeType = "variable"
	ChargeRecurringVariable ChargeType = "recurring_variable"
)

// Valid reports whether the charge type is one of the known values.
func (c ChargeType) Valid() bool {
	switch c {
	case ChargeSubscription, ChargeOneTime, ChargeVariable, ChargeRecurringVariable:
		return true
	}
	return false
}

// SplitHint marks merchants whose orders often span several categories.
type SplitHint struct {
	Strategy string `json:"strategy,omitempty" yaml:"strategy"`
	Note     string `json:"note,omitempty" yaml:"note"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

// MerchantRecord is a known merchant identity and its classification.
type MerchantRecord struct {
	SplitHint    *SplitHint `json:"split_hint,omitempty"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory"`
	ChargeType   ChargeType `json:"charge_type"`
	BusinessType string     `json:"business_type"`
	LogoURL      string     `json:"logo_url,omitempty"`
	TypicalRange string     `json:"typical_range,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Aliases      []string   `json:"aliases"`
	IsIndian     bool       `json:"is_indian"`
	IsOnline     bool       `json:"is_online"`
	SupportsEMI  bool       `json:"supports_emi"`
}

// EnrichmentSource records which enrichment strategy produced a merchant.
type EnrichmentSource string

// Enrichment source constants.
const (
	SourceMerchantDB      EnrichmentSource = "merchant_db"
	SourceFuzzyMatch      EnrichmentSource = "fuzzy_match"
	SourcePatternInferred EnrichmentSource = "pattern_inferred"
)

// EnrichedMerchant is the merchant metadata attached to a processed transaction.
type EnrichedMerchant struct {
	Name                string           `json:"name"`
	LogoURL             string           `json:"logo_url,omitempty"`
	BusinessType        string           `json:"business_type"`
	BusinessTypeDisplay string           `json:"business_type_display"`
	ChargeType          ChargeType       `json:"charge_type"`
	ChargeDescription   string           `json:"charge_description"`
	TypicalRange        string           `json:"typical_range,omitempty"`
	Category            string           `json:"category"`
	Subcategory         string           `json:"subcategory"`
	Source              EnrichmentSource `json:"source"`
	Confidence          float64          `json:"confidence"`
	IsOnline            bool             `json:"is_online"`
	IsIndian            bool             `json:"is_indian"`
	SupportsEMI         bool             `json:"supports_emi"`
	IsSubscription      bool             `json:"is_subscription"`
}
