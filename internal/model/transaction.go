// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// DateLayout is the ISO date format used for transaction dates.
const DateLayout = "2006-01-02"

// TransactionDirection indicates whether money left or entered the account.
type TransactionDirection string

// Transaction direction constants.
const (
	DirectionDebit  TransactionDirection = "debit"
	DirectionCredit TransactionDirection = "credit"
)

// LineItem is an explicit sub-item of a purchase, when the source provides one.
type LineItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Transaction represents a single raw transaction to classify.
// Positive amounts are spend, negative amounts are income.
type Transaction struct {
	ID          string     `json:"transaction_id"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Currency    string     `json:"currency"`
	LineItems   []LineItem `json:"line_items,omitempty"`
	Amount      float64    `json:"amount"`
}

// Direction derives debit or credit from the sign of the amount.
func (t Transaction) Direction() TransactionDirection {
	if t.Amount < 0 {
		return DirectionCredit
	}
	return DirectionDebit
}

// AbsAmount returns the unsigned transaction amount.
func (t Transaction) AbsAmount() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// ParsedDate returns the transaction date, or the zero time if it is missing or malformed.
func (t Transaction) ParsedDate() time.Time {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return time.Time{}
	}
	return d
}

// GenerateID creates a stable identifier for transactions supplied without one.
func (t Transaction) GenerateID() string {
	data := fmt.Sprintf("%s:%.2f:%s", t.Date, t.Amount, t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:8])
}
