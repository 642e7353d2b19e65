package usecase

import (
	"context"
	"time"

	"github.com/veripay/veripay/internal/domain"
)

// ReconciliationUseCase runs the matching engine over a statement period and
// persists the outcome.
type ReconciliationUseCase struct {
	captures CaptureRepository
	runs     ReconciliationRepository
	txm      TransactionManager
	engine   Reconciler
	idGen    IDGenerator
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	captures CaptureRepository,
	runs ReconciliationRepository,
	txm TransactionManager,
	engine Reconciler,
	idGen IDGenerator,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		captures: captures,
		runs:     runs,
		txm:      txm,
		engine:   engine,
		idGen:    idGen,
	}
}

// RunReconciliationInput is one statement period to reconcile.
type RunReconciliationInput struct {
	RestaurantID string
	From         time.Time
	To           time.Time
	Lines        []domain.StatementLine
}

// RunReconciliation loads the restaurant's transactions for the period,
// matches them against the statement lines, and persists the run together
// with the reconciled markers in one database transaction.
func (uc *ReconciliationUseCase) RunReconciliation(ctx context.Context, input RunReconciliationInput) (*domain.ReconciliationRun, error) {
	txs, err := uc.captures.ListForPeriod(ctx, input.RestaurantID, input.From, input.To)
	if err != nil {
		return nil, err
	}

	result, err := uc.engine.Reconcile(txs, input.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &domain.ReconciliationRun{
		ID:           uc.idGen.Generate(),
		RestaurantID: input.RestaurantID,
		PeriodFrom:   input.From,
		PeriodTo:     input.To,
		Result:       *result,
		CreatedAt:    now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	dbtx, err := uc.txm.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = dbtx.Rollback(txCtx)
	}()

	if err := uc.runs.CreateRun(txCtx, dbtx, run); err != nil {
		return nil, err
	}

	if ids := matchedIDs(result); len(ids) > 0 {
		if err := uc.captures.MarkReconciled(txCtx, dbtx, ids, run.ID, now); err != nil {
			return nil, err
		}
	}

	if err := dbtx.Commit(txCtx); err != nil {
		return nil, err
	}

	return run, nil
}

// GetRun retrieves a persisted reconciliation run.
func (uc *ReconciliationUseCase) GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
	return uc.runs.GetRun(ctx, id)
}

// ListRunsInput represents input for listing a restaurant's runs.
type ListRunsInput struct {
	RestaurantID string
	Limit        int
	Offset       int
}

// ListRuns lists a restaurant's reconciliation runs, newest first.
func (uc *ReconciliationUseCase) ListRuns(ctx context.Context, input ListRunsInput) ([]*domain.ReconciliationRun, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageLimit
	}
	if input.Limit > MaxPageLimit {
		input.Limit = MaxPageLimit
	}
	return uc.runs.ListRuns(ctx, input.RestaurantID, input.Limit, input.Offset)
}

func matchedIDs(result *domain.ReconciliationResult) []string {
	ids := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		if m.Transaction.ID != "" {
			ids = append(ids, m.Transaction.ID)
		}
	}
	return ids
}
