package model

import "time"

// FeedbackCorrection is a user correction remembered by description fingerprint.
type FeedbackCorrection struct {
	CorrectedAt time.Time `json:"corrected_at"`
	Fingerprint string    `json:"fingerprint"`
	SampleText  string    `json:"sample_text"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Count       int       `json:"count"`
}

// MerchantOverride forces a category for every transaction of a merchant.
type MerchantOverride struct {
	UpdatedAt   time.Time `json:"updated_at"`
	Merchant    string    `json:"merchant"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
}

// TrainingExample is one labelled description for the statistical classifier.
type TrainingExample struct {
	Text        string `yaml:"text"`
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
}
