package usecase

import (
	"context"
	"time"

	"github.com/veripay/veripay/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// CaptureRepository defines data access for verified captures.
type CaptureRepository interface {
	Create(ctx context.Context, capture *domain.VerifiedCapture) error
	GetByID(ctx context.Context, id string) (*domain.VerifiedCapture, error)
	ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*domain.VerifiedCapture, error)
	ListForPeriod(ctx context.Context, restaurantID string, from, to time.Time) ([]domain.ExtractedTransaction, error)
	MarkReconciled(ctx context.Context, tx Transaction, ids []string, runID string, at time.Time) error
}

// ReconciliationRepository defines data access for reconciliation runs.
type ReconciliationRepository interface {
	CreateRun(ctx context.Context, tx Transaction, run *domain.ReconciliationRun) error
	GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error)
	ListRuns(ctx context.Context, restaurantID string, limit, offset int) ([]*domain.ReconciliationRun, error)
}

// FieldExtractor recovers a structured transaction from recognized text.
type FieldExtractor interface {
	Extract(text string, hint domain.BankFamily) domain.ExtractedTransaction
}

// TamperAnalyzer scores a capture image for manipulation evidence.
type TamperAnalyzer interface {
	Analyze(data []byte) domain.ForensicsReport
}

// Reconciler matches submitted transactions against statement lines.
type Reconciler interface {
	Reconcile(txs []domain.ExtractedTransaction, lines []domain.StatementLine) (*domain.ReconciliationResult, error)
}

// DedupStore atomically claims reference IDs so the same receipt cannot be
// submitted twice.
type DedupStore interface {
	// Reserve claims a reference ID. Returns false when an earlier capture
	// already claimed it.
	Reserve(ctx context.Context, referenceID string, ttl time.Duration) (bool, error)
	// Release frees a claim, used when persistence fails after a reserve.
	Release(ctx context.Context, referenceID string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
