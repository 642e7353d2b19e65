package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	// MaxPlausibleAmount is the ETB amount above which a single restaurant
	// payment is flagged for review.
	MaxPlausibleAmount = "1000000"
)

var maxPlausibleAmount = decimal.RequireFromString(MaxPlausibleAmount)

// ValidateExtraction checks an extracted transaction for reviewer-facing
// issues. A non-empty issue list does not make the record invalid for
// storage; it is surfaced alongside the confidence score.
func ValidateExtraction(tx *ExtractedTransaction, now time.Time) (bool, []string) {
	var issues []string

	if tx.ReferenceID == "" {
		issues = append(issues, "reference id not found")
	}

	if !tx.HasAmount() {
		issues = append(issues, "amount not found or not positive")
	} else if tx.Amount.GreaterThan(maxPlausibleAmount) {
		issues = append(issues, fmt.Sprintf("amount %s seems unusually high", tx.Amount))
	}

	if !tx.HasDate() {
		issues = append(issues, "transaction date not found")
	} else if tx.Date.After(now) {
		issues = append(issues, "transaction date is in the future")
	}

	return len(issues) == 0, issues
}
