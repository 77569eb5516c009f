package model

import "time"

// ProcessedTransaction is the final pipeline output for one transaction.
type ProcessedTransaction struct {
	ProcessedAt            time.Time         `json:"processed_at"`
	TransactionID          string            `json:"transaction_id"`
	Date                   string            `json:"date"`
	Description            string            `json:"description"`
	Currency               string            `json:"currency"`
	Category               string            `json:"category"`
	Subcategory            string            `json:"subcategory"`
	Method                 Method            `json:"categorization_method"`
	CustomCategoryID       string            `json:"custom_category_id,omitempty"`
	CustomCategoryName     string            `json:"custom_category_name,omitempty"`
	CustomCategoryIcon     string            `json:"custom_category_icon,omitempty"`
	MerchantName           string            `json:"merchant_name"`
	MerchantLogo           string            `json:"merchant_logo,omitempty"`
	BusinessType           string            `json:"business_type"`
	ChargeType             ChargeType        `json:"charge_type"`
	ChargeDescription      string            `json:"charge_description"`
	Counterparty           string            `json:"p2p_counterparty,omitempty"`
	P2PDirection           TransferDirection `json:"p2p_direction,omitempty"`
	SplitItems             []SplitItem       `json:"split_items,omitempty"`
	Tags                   []string          `json:"tags"`
	Amount                 float64           `json:"amount"`
	Confidence             float64           `json:"confidence"`
	P2PConfidence          float64           `json:"p2p_confidence"`
	IsSplit                bool              `json:"is_split"`
	MerchantSupportsEMI    bool              `json:"merchant_supports_emi"`
	MerchantIsSubscription bool              `json:"merchant_is_subscription"`
	IsP2P                  bool              `json:"is_p2p"`
	NeedsReview            bool              `json:"needs_review"`
}

// CategoryTotal aggregates spend for one category pair.
type CategoryTotal struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// SubscriptionEntry is a subscription charge found in a batch.
type SubscriptionEntry struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
}

// SummaryReport aggregates a batch of processed transactions.
type SummaryReport struct {
	Categories        map[string]CategoryTotal `json:"categories"`
	Subscriptions     []SubscriptionEntry      `json:"subscriptions"`
	NeedsReviewIDs    []string                 `json:"needs_review_ids"`
	TotalTransactions int                      `json:"total_transactions"`
	TotalSpend        float64                  `json:"total_spend"`
	NeedsReviewCount  int                      `json:"needs_review"`
	SplitTransactions int                      `json:"split_transactions"`
}
