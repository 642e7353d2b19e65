package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchBasis names the rule that produced a reconciliation match.
type MatchBasis string

const (
	MatchExactReference  MatchBasis = "EXACT_REFERENCE"
	MatchFuzzyAmountDate MatchBasis = "FUZZY_AMOUNT_DATE"
)

// DiscrepancyType classifies a mismatch found on a matched pair.
type DiscrepancyType string

const (
	DiscrepancyAmountMismatch DiscrepancyType = "AMOUNT_MISMATCH"
	DiscrepancyDateMismatch   DiscrepancyType = "DATE_MISMATCH"
)

// ReconciliationMatch pairs one submitted transaction with one statement
// line. Each statement line matches at most one transaction.
type ReconciliationMatch struct {
	Transaction ExtractedTransaction
	Line        StatementLine
	Confidence  float64
	Basis       MatchBasis
}

// Discrepancy records an amount or date mismatch on a matched pair.
type Discrepancy struct {
	Type        DiscrepancyType
	ReferenceID string
	AmountDelta decimal.Decimal
	DayDelta    int
}

// ReconciliationSummary aggregates one reconciliation run. It is derived
// read-only data, recomputed on every run.
type ReconciliationSummary struct {
	TotalTransactions       int
	TotalStatementLines     int
	Matched                 int
	UnmatchedTransactions   int
	UnmatchedStatementLines int
	MatchedAmount           decimal.Decimal
	UnmatchedAmount         decimal.Decimal
	Discrepancies           int
	MatchRate               float64
}

// ReconciliationResult is the full output of one engine run.
type ReconciliationResult struct {
	Matches               []ReconciliationMatch
	UnmatchedTransactions []ExtractedTransaction
	UnmatchedStatement    []StatementLine
	Discrepancies         []Discrepancy
	Summary               ReconciliationSummary
	RanAt                 time.Time
}

// ReconciliationRun is a persisted engine run for one restaurant and
// statement period.
type ReconciliationRun struct {
	ID           string
	RestaurantID string
	PeriodFrom   time.Time
	PeriodTo     time.Time
	Result       ReconciliationResult
	CreatedAt    time.Time
}
