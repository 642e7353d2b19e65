package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/veripay/veripay/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TransactionResponse represents an extracted transaction in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	RestaurantID  string          `json:"restaurant_id"`
	SubmittedBy   string          `json:"submitted_by,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Date          *time.Time      `json:"date,omitempty"`
	RawDate       string          `json:"raw_date,omitempty"`
	PayerName     string          `json:"payer_name,omitempty"`
	ReceiverName  string          `json:"receiver_name,omitempty"`
	BankFamily    string          `json:"bank_family"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Confidence    float64         `json:"confidence"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.ExtractedTransaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:            t.ID,
		RestaurantID:  t.RestaurantID,
		SubmittedBy:   t.SubmittedBy,
		Amount:        t.Amount,
		Currency:      t.Currency,
		ReferenceID:   t.ReferenceID,
		RawDate:       t.RawDate,
		PayerName:     t.PayerName,
		ReceiverName:  t.ReceiverName,
		BankFamily:    string(t.BankFamily),
		PaymentMethod: t.PaymentMethod,
		Confidence:    t.Confidence,
		CreatedAt:     t.CreatedAt,
	}
	if t.HasDate() {
		d := t.Date
		resp.Date = &d
	}
	return resp
}

// SignalResponse represents one forensics signal in API responses.
type SignalResponse struct {
	Signal string  `json:"signal"`
	Fired  bool    `json:"fired"`
	Weight float64 `json:"weight"`
	Reason string  `json:"reason,omitempty"`
}

// ForensicsResponse represents a tamper analysis in API responses.
type ForensicsResponse struct {
	FraudScore     float64          `json:"fraud_score"`
	SuspicionLevel string           `json:"suspicion_level"`
	Indicators     []string         `json:"indicators,omitempty"`
	Signals        []SignalResponse `json:"signals,omitempty"`
}

// ForensicsFromDomain converts a domain report to a response.
func ForensicsFromDomain(r *domain.ForensicsReport) *ForensicsResponse {
	resp := &ForensicsResponse{
		FraudScore:     r.FraudScore,
		SuspicionLevel: string(r.SuspicionLevel),
		Indicators:     r.Indicators,
	}
	for _, s := range r.SignalBreakdown {
		resp.Signals = append(resp.Signals, SignalResponse{
			Signal: s.Signal,
			Fired:  s.Fired,
			Weight: s.Weight,
			Reason: s.Reason,
		})
	}
	return resp
}

// CaptureResponse is the full verification outcome for one capture.
type CaptureResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	Forensics   *ForensicsResponse   `json:"forensics"`
	Issues      []string             `json:"issues,omitempty"`
}

// CaptureFromDomain converts a verified capture to a response.
func CaptureFromDomain(c *domain.VerifiedCapture) *CaptureResponse {
	return &CaptureResponse{
		Transaction: TransactionFromDomain(&c.Transaction),
		Forensics:   ForensicsFromDomain(&c.Forensics),
		Issues:      c.Issues,
	}
}

// CapturesFromDomain converts a capture list to responses.
func CapturesFromDomain(captures []*domain.VerifiedCapture) []*CaptureResponse {
	result := make([]*CaptureResponse, len(captures))
	for i, c := range captures {
		result[i] = CaptureFromDomain(c)
	}
	return result
}

// MatchResponse represents one matched pair in API responses.
type MatchResponse struct {
	TransactionID string          `json:"transaction_id"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Confidence    float64         `json:"confidence"`
	Basis         string          `json:"basis"`
}

// DiscrepancyResponse represents one discrepancy in API responses.
type DiscrepancyResponse struct {
	Type        string          `json:"type"`
	ReferenceID string          `json:"reference_id,omitempty"`
	AmountDelta decimal.Decimal `json:"amount_delta"`
	DayDelta    int             `json:"day_delta"`
}

// SummaryResponse aggregates one reconciliation run.
type SummaryResponse struct {
	TotalTransactions       int             `json:"total_transactions"`
	TotalStatementLines     int             `json:"total_statement_lines"`
	Matched                 int             `json:"matched"`
	UnmatchedTransactions   int             `json:"unmatched_transactions"`
	UnmatchedStatementLines int             `json:"unmatched_statement_lines"`
	MatchedAmount           decimal.Decimal `json:"matched_amount"`
	UnmatchedAmount         decimal.Decimal `json:"unmatched_amount"`
	Discrepancies           int             `json:"discrepancies"`
	MatchRate               float64         `json:"match_rate"`
}

// ReconciliationRunResponse represents a persisted run in API responses.
type ReconciliationRunResponse struct {
	ID            string                 `json:"id"`
	RestaurantID  string                 `json:"restaurant_id"`
	PeriodFrom    time.Time              `json:"period_from"`
	PeriodTo      time.Time              `json:"period_to"`
	Summary       SummaryResponse        `json:"summary"`
	Matches       []MatchResponse        `json:"matches,omitempty"`
	Unmatched     []*TransactionResponse `json:"unmatched_transactions,omitempty"`
	Discrepancies []DiscrepancyResponse  `json:"discrepancies,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// RunFromDomain converts a domain run to a response.
func RunFromDomain(run *domain.ReconciliationRun) *ReconciliationRunResponse {
	s := run.Result.Summary
	resp := &ReconciliationRunResponse{
		ID:           run.ID,
		RestaurantID: run.RestaurantID,
		PeriodFrom:   run.PeriodFrom,
		PeriodTo:     run.PeriodTo,
		Summary: SummaryResponse{
			TotalTransactions:       s.TotalTransactions,
			TotalStatementLines:     s.TotalStatementLines,
			Matched:                 s.Matched,
			UnmatchedTransactions:   s.UnmatchedTransactions,
			UnmatchedStatementLines: s.UnmatchedStatementLines,
			MatchedAmount:           s.MatchedAmount,
			UnmatchedAmount:         s.UnmatchedAmount,
			Discrepancies:           s.Discrepancies,
			MatchRate:               s.MatchRate,
		},
		CreatedAt: run.CreatedAt,
	}
	for _, m := range run.Result.Matches {
		resp.Matches = append(resp.Matches, MatchResponse{
			TransactionID: m.Transaction.ID,
			ReferenceID:   m.Transaction.ReferenceID,
			Amount:        m.Transaction.Amount,
			Confidence:    m.Confidence,
			Basis:         string(m.Basis),
		})
	}
	for i := range run.Result.UnmatchedTransactions {
		resp.Unmatched = append(resp.Unmatched, TransactionFromDomain(&run.Result.UnmatchedTransactions[i]))
	}
	for _, d := range run.Result.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, DiscrepancyResponse{
			Type:        string(d.Type),
			ReferenceID: d.ReferenceID,
			AmountDelta: d.AmountDelta,
			DayDelta:    d.DayDelta,
		})
	}
	return resp
}

// RunsFromDomain converts a run list to responses.
func RunsFromDomain(runs []*domain.ReconciliationRun) []*ReconciliationRunResponse {
	result := make([]*ReconciliationRunResponse, len(runs))
	for i, r := range runs {
		result[i] = RunFromDomain(r)
	}
	return result
}
