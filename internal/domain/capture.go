package domain

// VerifiedCapture is the persisted outcome of verifying one capture: the
// extracted transaction, its tamper analysis, and any reviewer-facing
// extraction issues.
type VerifiedCapture struct {
	Transaction ExtractedTransaction
	Forensics   ForensicsReport
	Issues      []string
}
