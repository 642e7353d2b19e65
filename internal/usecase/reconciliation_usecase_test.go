package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/usecase"
	"github.com/veripay/veripay/internal/usecase/mocks"
)

func TestRunReconciliation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captures := mocks.NewMockCaptureRepository(ctrl)
	runs := mocks.NewMockReconciliationRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	engine := mocks.NewMockReconciler(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)
	dbtx := mocks.NewMockTransaction(ctrl)

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	txs := []domain.ExtractedTransaction{
		{ID: "t1", ReferenceID: "FT001", Amount: decimal.RequireFromString("100")},
	}
	lines := []domain.StatementLine{
		{ReferenceID: "FT001", Amount: decimal.RequireFromString("100")},
	}
	result := &domain.ReconciliationResult{
		Matches: []domain.ReconciliationMatch{
			{Transaction: txs[0], Line: lines[0], Confidence: 1.0, Basis: domain.MatchExactReference},
		},
		Summary: domain.ReconciliationSummary{Matched: 1, MatchRate: 1.0},
	}

	captures.EXPECT().ListForPeriod(gomock.Any(), "rest-1", from, to).Return(txs, nil)
	engine.EXPECT().Reconcile(txs, lines).Return(result, nil)
	idGen.EXPECT().Generate().Return("run-1")
	txm.EXPECT().Begin(gomock.Any()).Return(dbtx, nil)
	runs.EXPECT().CreateRun(gomock.Any(), dbtx, gomock.Any()).Return(nil)
	captures.EXPECT().MarkReconciled(gomock.Any(), dbtx, []string{"t1"}, "run-1", gomock.Any()).Return(nil)
	dbtx.EXPECT().Commit(gomock.Any()).Return(nil)
	dbtx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	uc := usecase.NewReconciliationUseCase(captures, runs, txm, engine, idGen)

	run, err := uc.RunReconciliation(context.Background(), usecase.RunReconciliationInput{
		RestaurantID: "rest-1",
		From:         from,
		To:           to,
		Lines:        lines,
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "rest-1", run.RestaurantID)
	assert.Equal(t, 1, run.Result.Summary.Matched)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestRunReconciliationEngineError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captures := mocks.NewMockCaptureRepository(ctrl)
	runs := mocks.NewMockReconciliationRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	engine := mocks.NewMockReconciler(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	captures.EXPECT().ListForPeriod(gomock.Any(), "rest-1", gomock.Any(), gomock.Any()).Return(nil, nil)
	engine.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNoStatementData)

	uc := usecase.NewReconciliationUseCase(captures, runs, txm, engine, idGen)

	_, err := uc.RunReconciliation(context.Background(), usecase.RunReconciliationInput{RestaurantID: "rest-1"})
	require.ErrorIs(t, err, domain.ErrNoStatementData)
}

func TestRunReconciliationNoMatchesSkipsMarking(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captures := mocks.NewMockCaptureRepository(ctrl)
	runs := mocks.NewMockReconciliationRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	engine := mocks.NewMockReconciler(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)
	dbtx := mocks.NewMockTransaction(ctrl)

	result := &domain.ReconciliationResult{
		Summary: domain.ReconciliationSummary{TotalStatementLines: 2},
	}

	captures.EXPECT().ListForPeriod(gomock.Any(), "rest-1", gomock.Any(), gomock.Any()).Return(nil, nil)
	engine.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(result, nil)
	idGen.EXPECT().Generate().Return("run-2")
	txm.EXPECT().Begin(gomock.Any()).Return(dbtx, nil)
	runs.EXPECT().CreateRun(gomock.Any(), dbtx, gomock.Any()).Return(nil)
	dbtx.EXPECT().Commit(gomock.Any()).Return(nil)
	dbtx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	uc := usecase.NewReconciliationUseCase(captures, runs, txm, engine, idGen)

	run, err := uc.RunReconciliation(context.Background(), usecase.RunReconciliationInput{
		RestaurantID: "rest-1",
		Lines:        []domain.StatementLine{},
	})
	require.NoError(t, err)
	assert.Empty(t, run.Result.Matches)
}

func TestGetRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captures := mocks.NewMockCaptureRepository(ctrl)
	runs := mocks.NewMockReconciliationRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	engine := mocks.NewMockReconciler(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	runs.EXPECT().GetRun(gomock.Any(), "missing").Return(nil, domain.ErrRunNotFound)

	uc := usecase.NewReconciliationUseCase(captures, runs, txm, engine, idGen)

	_, err := uc.GetRun(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrRunNotFound)
}
