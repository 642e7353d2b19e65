package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedTransaction is the structured record recovered from a receipt
// capture's recognized text. Fields the extractor could not recover are left
// empty/zero; Confidence reflects how much of the record was populated.
type ExtractedTransaction struct {
	ID            string
	RestaurantID  string
	SubmittedBy   string
	Amount        decimal.Decimal
	Currency      string
	ReferenceID   string
	Date          time.Time
	RawDate       string
	PayerName     string
	ReceiverName  string
	BankFamily    BankFamily
	PaymentMethod string
	Confidence    float64
	CreatedAt     time.Time
}

// HasDate reports whether a calendar date was actually parsed. An unparsed
// date token is still carried in RawDate for string-level comparison.
func (t *ExtractedTransaction) HasDate() bool {
	return !t.Date.IsZero()
}

// HasAmount reports whether a positive amount was recovered.
func (t *ExtractedTransaction) HasAmount() bool {
	return t.Amount.IsPositive()
}
