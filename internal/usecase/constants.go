package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds the database transaction that
	// persists a reconciliation run.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultDedupeTTL is how long a reference ID claim is held when the
	// caller does not configure one. Statements arrive monthly, so claims
	// outlive a full statement cycle.
	DefaultDedupeTTL = 30 * 24 * time.Hour

	// DefaultPageLimit and MaxPageLimit bound list queries.
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)
