// Package recon matches submitted transactions against official bank
// statement lines, producing matched pairs, unmatched sets, typed
// discrepancies and a summary.
package recon

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/veripay/veripay/internal/domain"
)

// Config holds the matching tolerances. The defaults are the source
// system's hand-tuned values, not derived from a labeled dataset.
type Config struct {
	// AmountTolerance is the currency delta (ETB) within which two amounts
	// are considered the same payment.
	AmountTolerance decimal.Decimal
	// DateToleranceDays is the calendar distance within which a fuzzy
	// amount match is accepted.
	DateToleranceDays int
}

// DefaultConfig returns the documented defaults: 1 ETB, 3 days.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:   decimal.NewFromInt(1),
		DateToleranceDays: 3,
	}
}

// Engine reconciles one (restaurant, period) batch. It is pure over its
// inputs; separate batches can run concurrently.
//
// The scan is O(n*m); fine for per-restaurant weekly volumes. Bucketing
// statement lines by amount/date is the next step if statements grow large.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// New creates an Engine.
func New(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log.With().Str("component", "recon").Logger()}
}

// Reconcile matches transactions against statement lines, greedy first-fit
// in statement order. A nil lines slice means the statement failed to parse
// upstream and returns ErrNoStatementData; an empty slice is a valid
// statement with nothing in it.
func (e *Engine) Reconcile(txs []domain.ExtractedTransaction, lines []domain.StatementLine) (*domain.ReconciliationResult, error) {
	if lines == nil {
		return nil, domain.ErrNoStatementData
	}

	cleanTxs := cleanTransactions(txs)
	cleanLines := cleanLines(lines)

	result := &domain.ReconciliationResult{RanAt: time.Now().UTC()}
	consumed := make([]bool, len(cleanLines))
	consumedRefs := make(map[string]bool)

	for _, tx := range cleanTxs {
		matched := false
		for i, line := range cleanLines {
			if consumed[i] {
				continue
			}
			if line.ReferenceID != "" && consumedRefs[line.ReferenceID] {
				continue
			}

			basis, ok := e.matchBasis(&tx, &line)
			if !ok {
				continue
			}

			consumed[i] = true
			if line.ReferenceID != "" {
				consumedRefs[line.ReferenceID] = true
			}
			result.Matches = append(result.Matches, domain.ReconciliationMatch{
				Transaction: tx,
				Line:        line,
				Confidence:  e.matchConfidence(&tx, &line),
				Basis:       basis,
			})
			matched = true
			break
		}

		if !matched {
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, tx)
		}
	}

	for i, line := range cleanLines {
		if !consumed[i] {
			result.UnmatchedStatement = append(result.UnmatchedStatement, line)
		}
	}

	result.Discrepancies = e.findDiscrepancies(result.Matches)
	result.Summary = summarize(result)

	return result, nil
}

// matchBasis applies the two matching rules in priority order: exact
// reference equality, then amount within tolerance AND date within the day
// tolerance. Transactions without a parsed date carry no fuzzy evidence.
func (e *Engine) matchBasis(tx *domain.ExtractedTransaction, line *domain.StatementLine) (domain.MatchBasis, bool) {
	if tx.ReferenceID != "" && tx.ReferenceID == line.ReferenceID {
		return domain.MatchExactReference, true
	}

	if amountDelta(tx.Amount, line.Amount).LessThanOrEqual(e.cfg.AmountTolerance) {
		if days, ok := dayDelta(tx.Date, line.Date); ok && days <= e.cfg.DateToleranceDays {
			return domain.MatchFuzzyAmountDate, true
		}
	}

	return "", false
}

// matchConfidence scores a match: exact reference is worth 0.8, amount
// closeness up to 0.2, date closeness up to 0.1, clamped to 1.
func (e *Engine) matchConfidence(tx *domain.ExtractedTransaction, line *domain.StatementLine) float64 {
	var confidence float64

	if tx.ReferenceID != "" && tx.ReferenceID == line.ReferenceID {
		confidence += 0.8
	}

	delta := amountDelta(tx.Amount, line.Amount)
	switch {
	case delta.IsZero():
		confidence += 0.2
	case delta.LessThanOrEqual(e.cfg.AmountTolerance):
		confidence += 0.1
	}

	if days, ok := dayDelta(tx.Date, line.Date); ok {
		switch {
		case days == 0:
			confidence += 0.1
		case days <= 1:
			confidence += 0.05
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// findDiscrepancies inspects matched pairs only. A single match can produce
// both an amount and a date discrepancy.
func (e *Engine) findDiscrepancies(matches []domain.ReconciliationMatch) []domain.Discrepancy {
	var out []domain.Discrepancy

	for _, m := range matches {
		delta := amountDelta(m.Transaction.Amount, m.Line.Amount)
		if delta.GreaterThan(e.cfg.AmountTolerance) {
			out = append(out, domain.Discrepancy{
				Type:        domain.DiscrepancyAmountMismatch,
				ReferenceID: m.Transaction.ReferenceID,
				AmountDelta: delta,
			})
		}

		if days, ok := dayDelta(m.Transaction.Date, m.Line.Date); ok && days > 1 {
			out = append(out, domain.Discrepancy{
				Type:        domain.DiscrepancyDateMismatch,
				ReferenceID: m.Transaction.ReferenceID,
				DayDelta:    days,
			})
		}
	}

	return out
}

// cleanTransactions drops duplicate reference ids (first occurrence wins)
// and rows lacking both a reference id and a positive amount, which cannot
// be reconciled by either rule.
func cleanTransactions(txs []domain.ExtractedTransaction) []domain.ExtractedTransaction {
	seen := make(map[string]bool, len(txs))
	out := make([]domain.ExtractedTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.ReferenceID == "" && !tx.HasAmount() {
			continue
		}
		if tx.ReferenceID != "" {
			if seen[tx.ReferenceID] {
				continue
			}
			seen[tx.ReferenceID] = true
		}
		out = append(out, tx)
	}
	return out
}

func cleanLines(lines []domain.StatementLine) []domain.StatementLine {
	seen := make(map[string]bool, len(lines))
	out := make([]domain.StatementLine, 0, len(lines))
	for _, line := range lines {
		if line.ReferenceID == "" && !line.Amount.IsPositive() {
			continue
		}
		if line.ReferenceID != "" {
			if seen[line.ReferenceID] {
				continue
			}
			seen[line.ReferenceID] = true
		}
		out = append(out, line)
	}
	return out
}

func summarize(r *domain.ReconciliationResult) domain.ReconciliationSummary {
	s := domain.ReconciliationSummary{
		TotalTransactions:       len(r.Matches) + len(r.UnmatchedTransactions),
		TotalStatementLines:     len(r.Matches) + len(r.UnmatchedStatement),
		Matched:                 len(r.Matches),
		UnmatchedTransactions:   len(r.UnmatchedTransactions),
		UnmatchedStatementLines: len(r.UnmatchedStatement),
		MatchedAmount:           decimal.Zero,
		UnmatchedAmount:         decimal.Zero,
		Discrepancies:           len(r.Discrepancies),
	}

	for _, m := range r.Matches {
		s.MatchedAmount = s.MatchedAmount.Add(m.Transaction.Amount)
	}
	for _, tx := range r.UnmatchedTransactions {
		s.UnmatchedAmount = s.UnmatchedAmount.Add(tx.Amount)
	}

	if s.TotalTransactions > 0 {
		s.MatchRate = float64(s.Matched) / float64(s.TotalTransactions)
	}

	return s
}

func amountDelta(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b).Abs()
}

// dayDelta returns the absolute calendar distance in whole days, or false
// when either side has no parsed date.
func dayDelta(a, b time.Time) (int, bool) {
	if a.IsZero() || b.IsZero() {
		return 0, false
	}
	hours := math.Abs(a.Sub(b).Hours())
	return int(hours / 24), true
}
