package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/usecase"
)

// ReconciliationRepository implements usecase.ReconciliationRepository on
// PostgreSQL. The full engine result is stored as a JSONB document; runs
// are immutable once written.
type ReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{pool: pool}
}

// CreateRun persists a run inside the caller's transaction.
func (r *ReconciliationRepository) CreateRun(ctx context.Context, tx usecase.Transaction, run *domain.ReconciliationRun) error {
	result, err := json.Marshal(run.Result)
	if err != nil {
		return err
	}

	pgxTx := tx.(*Tx).PgxTx()
	_, err = pgxTx.Exec(ctx,
		`INSERT INTO reconciliation_runs (id, restaurant_id, period_from, period_to, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.RestaurantID, run.PeriodFrom, run.PeriodTo, result, run.CreatedAt)
	return err
}

// GetRun retrieves a run by ID.
func (r *ReconciliationRepository) GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, restaurant_id, period_from, period_to, result, created_at
		 FROM reconciliation_runs WHERE id = $1`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

// ListRuns lists a restaurant's runs, newest first.
func (r *ReconciliationRepository) ListRuns(ctx context.Context, restaurantID string, limit, offset int) ([]*domain.ReconciliationRun, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, restaurant_id, period_from, period_to, result, created_at
		 FROM reconciliation_runs
		 WHERE restaurant_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		restaurantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.ReconciliationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*domain.ReconciliationRun, error) {
	var (
		run    domain.ReconciliationRun
		result []byte
	)
	if err := row.Scan(&run.ID, &run.RestaurantID, &run.PeriodFrom, &run.PeriodTo, &result, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &run.Result); err != nil {
		return nil, err
	}
	return &run, nil
}
