package domain

// SuspicionLevel is the coarse classification derived from the fraud score.
type SuspicionLevel string

const (
	SuspicionLow    SuspicionLevel = "LOW"
	SuspicionMedium SuspicionLevel = "MEDIUM"
	SuspicionHigh   SuspicionLevel = "HIGH"
)

// SignalScore is the audit record for one forensics signal.
type SignalScore struct {
	Signal string
	Fired  bool
	Weight float64
	Reason string
}

// ForensicsReport is the tamper analysis for one capture. It is computed
// once, attached to the transaction record, and never mutated afterward.
type ForensicsReport struct {
	FraudScore      float64
	SuspicionLevel  SuspicionLevel
	Indicators      []string
	SignalBreakdown []SignalScore
}

// Suspicious reports whether the capture warrants manual review.
func (r *ForensicsReport) Suspicious() bool {
	return r.SuspicionLevel != SuspicionLow
}
