package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/usecase"
)

// CaptureRepository implements usecase.CaptureRepository on PostgreSQL.
type CaptureRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewCaptureRepository creates a new CaptureRepository.
func NewCaptureRepository(pool *pgxpool.Pool, retrier *Retrier) *CaptureRepository {
	return &CaptureRepository{pool: pool, retrier: retrier}
}

const insertCaptureSQL = `
INSERT INTO captures (
	id, restaurant_id, submitted_by, amount, currency, reference_id,
	txn_date, raw_date, payer_name, receiver_name, bank_family,
	payment_method, confidence, fraud_score, suspicion_level,
	indicators, signals, issues, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	$16, $17, $18, $19
)`

// Create persists a verified capture. Transient deadlocks are retried.
func (r *CaptureRepository) Create(ctx context.Context, capture *domain.VerifiedCapture) error {
	txn := capture.Transaction
	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, insertCaptureSQL,
			txn.ID,
			txn.RestaurantID,
			txn.SubmittedBy,
			txn.Amount.String(),
			txn.Currency,
			nullableString(txn.ReferenceID),
			nullableTime(txn.Date),
			txn.RawDate,
			txn.PayerName,
			txn.ReceiverName,
			string(txn.BankFamily),
			txn.PaymentMethod,
			txn.Confidence,
			capture.Forensics.FraudScore,
			string(capture.Forensics.SuspicionLevel),
			capture.Forensics.Indicators,
			capture.Forensics.SignalBreakdown,
			capture.Issues,
			txn.CreatedAt,
		)
		return err
	})
}

const selectCaptureSQL = `
SELECT id, restaurant_id, submitted_by, amount, currency, reference_id,
	txn_date, raw_date, payer_name, receiver_name, bank_family,
	payment_method, confidence, fraud_score, suspicion_level,
	indicators, signals, issues, created_at
FROM captures`

// GetByID retrieves a verified capture by transaction ID.
func (r *CaptureRepository) GetByID(ctx context.Context, id string) (*domain.VerifiedCapture, error) {
	row := r.pool.QueryRow(ctx, selectCaptureSQL+" WHERE id = $1", id)
	capture, err := scanCapture(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return capture, nil
}

// ListByRestaurant lists a restaurant's captures, newest first.
func (r *CaptureRepository) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*domain.VerifiedCapture, error) {
	rows, err := r.pool.Query(ctx,
		selectCaptureSQL+" WHERE restaurant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		restaurantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*domain.VerifiedCapture
	for rows.Next() {
		capture, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		captures = append(captures, capture)
	}
	return captures, rows.Err()
}

// ListForPeriod returns the transactions whose parsed date falls in
// [from, to]. Records without a parsed date fall back to submission time so
// they still enter reconciliation.
func (r *CaptureRepository) ListForPeriod(ctx context.Context, restaurantID string, from, to time.Time) ([]domain.ExtractedTransaction, error) {
	rows, err := r.pool.Query(ctx,
		selectCaptureSQL+` WHERE restaurant_id = $1
			AND COALESCE(txn_date, created_at) >= $2
			AND COALESCE(txn_date, created_at) <= $3
		ORDER BY created_at`,
		restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.ExtractedTransaction
	for rows.Next() {
		capture, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, capture.Transaction)
	}
	return txs, rows.Err()
}

// MarkReconciled stamps matched transactions with the run that matched
// them, inside the caller's transaction.
func (r *CaptureRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, ids []string, runID string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	_, err := pgxTx.Exec(ctx,
		`UPDATE captures SET run_id = $1, reconciled_at = $2 WHERE id = ANY($3)`,
		runID, at, ids)
	return err
}

func scanCapture(row pgx.Row) (*domain.VerifiedCapture, error) {
	var (
		capture   domain.VerifiedCapture
		amount    string
		reference *string
		txnDate   *time.Time
		bank      string
		level     string
	)

	err := row.Scan(
		&capture.Transaction.ID,
		&capture.Transaction.RestaurantID,
		&capture.Transaction.SubmittedBy,
		&amount,
		&capture.Transaction.Currency,
		&reference,
		&txnDate,
		&capture.Transaction.RawDate,
		&capture.Transaction.PayerName,
		&capture.Transaction.ReceiverName,
		&bank,
		&capture.Transaction.PaymentMethod,
		&capture.Transaction.Confidence,
		&capture.Forensics.FraudScore,
		&level,
		&capture.Forensics.Indicators,
		&capture.Forensics.SignalBreakdown,
		&capture.Issues,
		&capture.Transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	capture.Transaction.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	if reference != nil {
		capture.Transaction.ReferenceID = *reference
	}
	if txnDate != nil {
		capture.Transaction.Date = *txnDate
	}
	capture.Transaction.BankFamily = domain.BankFamily(bank)
	capture.Forensics.SuspicionLevel = domain.SuspicionLevel(level)

	return &capture, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
