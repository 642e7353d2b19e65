package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/veripay/veripay/internal/adapter/http/dto"
	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/usecase"
)

type reconServiceStub struct {
	runFn  func(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error)
	getFn  func(ctx context.Context, id string) (*domain.ReconciliationRun, error)
	listFn func(ctx context.Context, input usecase.ListRunsInput) ([]*domain.ReconciliationRun, error)
}

func (s *reconServiceStub) RunReconciliation(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error) {
	return s.runFn(ctx, input)
}

func (s *reconServiceStub) GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
	return s.getFn(ctx, id)
}

func (s *reconServiceStub) ListRuns(ctx context.Context, input usecase.ListRunsInput) ([]*domain.ReconciliationRun, error) {
	return s.listFn(ctx, input)
}

type runCacheStub struct {
	getFn func(ctx context.Context, runID string) ([]byte, error)
	setFn func(ctx context.Context, runID string, report []byte, ttl time.Duration) error
}

func (s *runCacheStub) Get(ctx context.Context, runID string) ([]byte, error) {
	return s.getFn(ctx, runID)
}

func (s *runCacheStub) Set(ctx context.Context, runID string, report []byte, ttl time.Duration) error {
	return s.setFn(ctx, runID, report, ttl)
}

func sampleRun(id string) *domain.ReconciliationRun {
	return &domain.ReconciliationRun{
		ID:           id,
		RestaurantID: "rest-1",
		PeriodFrom:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:     time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		Result: domain.ReconciliationResult{
			Summary: domain.ReconciliationSummary{
				TotalTransactions: 3,
				Matched:           2,
				MatchRate:         2.0 / 3.0,
			},
		},
		CreatedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReconcileHandler_Run_JSON(t *testing.T) {
	var captured usecase.RunReconciliationInput
	handler := NewReconcileHandler(&reconServiceStub{
		runFn: func(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error) {
			captured = input
			return sampleRun("run-1"), nil
		},
	}, nil, nil, zerolog.Nop())

	date := "2025-08-08"
	body, _ := json.Marshal(dto.ReconcileRequest{
		RestaurantID: "rest-1",
		From:         time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		To:           time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		BankFamily:   "cbe",
		Lines: []dto.StatementLine{
			{ReferenceID: "FT25220ABCDE", Amount: "150.00", Date: &date},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.RestaurantID != "rest-1" || len(captured.Lines) != 1 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if captured.Lines[0].BankFamily != domain.BankCBE {
		t.Fatalf("expected cbe lines, got %s", captured.Lines[0].BankFamily)
	}

	var resp dto.ReconciliationRunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "run-1" || resp.Summary.Matched != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestReconcileHandler_Run_MissingLinesField(t *testing.T) {
	// A JSON body without a lines field must reach the use case with nil
	// lines so the engine can report missing statement data.
	handler := NewReconcileHandler(&reconServiceStub{
		runFn: func(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error) {
			if input.Lines != nil {
				t.Fatalf("expected nil lines, got %+v", input.Lines)
			}
			return nil, domain.ErrNoStatementData
		},
	}, nil, nil, zerolog.Nop())

	body := []byte(`{"restaurant_id":"rest-1","from":"2025-08-01T00:00:00Z","to":"2025-08-31T00:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReconcileHandler_Run_InvalidPeriod(t *testing.T) {
	handler := NewReconcileHandler(&reconServiceStub{
		runFn: func(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error) {
			t.Fatal("RunReconciliation should not be called for invalid payload")
			return nil, nil
		},
	}, nil, nil, zerolog.Nop())

	body, _ := json.Marshal(dto.ReconcileRequest{
		RestaurantID: "rest-1",
		From:         time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		To:           time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Lines:        []dto.StatementLine{},
	})
	req := httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func multipartStatement(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"restaurant_id": "rest-1",
		"from":          "2025-08-01",
		"to":            "2025-08-31",
		"bank_family":   "cbe",
	} {
		if err := w.WriteField(field, value); err != nil {
			t.Fatalf("write field %s: %v", field, err)
		}
	}
	part, err := w.CreateFormFile("statement", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestReconcileHandler_Run_MultipartCSV(t *testing.T) {
	var captured usecase.RunReconciliationInput
	handler := NewReconcileHandler(&reconServiceStub{
		runFn: func(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error) {
			captured = input
			return sampleRun("run-1"), nil
		},
	}, nil, nil, zerolog.Nop())

	body, contentType := multipartStatement(t, "august.csv", "Reference,Amount\nABC123,50.00\n")
	req := httptest.NewRequest(http.MethodPost, "/reconciliations", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(captured.Lines) != 1 || captured.Lines[0].ReferenceID != "ABC123" {
		t.Fatalf("expected parsed statement lines, got %+v", captured.Lines)
	}
	if !captured.From.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period start: %v", captured.From)
	}
}

func TestReconcileHandler_Run_MultipartBadExtension(t *testing.T) {
	handler := NewReconcileHandler(&reconServiceStub{
		runFn: func(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error) {
			t.Fatal("RunReconciliation should not be called for unsupported file type")
			return nil, nil
		},
	}, nil, nil, zerolog.Nop())

	body, contentType := multipartStatement(t, "august.xlsx", "not a statement")
	req := httptest.NewRequest(http.MethodPost, "/reconciliations", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReconcileHandler_Get_CacheHit(t *testing.T) {
	cached, _ := json.Marshal(dto.RunFromDomain(sampleRun("run-1")))
	handler := NewReconcileHandler(&reconServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
			t.Fatal("GetRun should not be called on a cache hit")
			return nil, nil
		},
	}, &runCacheStub{
		getFn: func(ctx context.Context, runID string) ([]byte, error) { return cached, nil },
	}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/reconciliations/run-1", nil)
	req = setChiURLParam(req, "id", "run-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), cached) {
		t.Fatal("expected cached body to be served verbatim")
	}
}

func TestReconcileHandler_Get_CacheMissPopulates(t *testing.T) {
	var storedID string
	var storedTTL time.Duration
	handler := NewReconcileHandler(&reconServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
			return sampleRun(id), nil
		},
	}, &runCacheStub{
		getFn: func(ctx context.Context, runID string) ([]byte, error) { return nil, nil },
		setFn: func(ctx context.Context, runID string, report []byte, ttl time.Duration) error {
			storedID, storedTTL = runID, ttl
			return nil
		},
	}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/reconciliations/run-1", nil)
	req = setChiURLParam(req, "id", "run-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if storedID != "run-1" || storedTTL != RunCacheTTL {
		t.Fatalf("expected cache write for run-1 with default TTL, got %s / %v", storedID, storedTTL)
	}
}

func TestReconcileHandler_Get_CacheFailureFallsThrough(t *testing.T) {
	// A broken cache backend must not break reads; the database stays
	// authoritative.
	served := false
	handler := NewReconcileHandler(&reconServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
			served = true
			return sampleRun(id), nil
		},
	}, &runCacheStub{
		getFn: func(ctx context.Context, runID string) ([]byte, error) {
			return nil, fmt.Errorf("dial tcp: connection refused")
		},
		setFn: func(ctx context.Context, runID string, report []byte, ttl time.Duration) error { return nil },
	}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/reconciliations/run-1", nil)
	req = setChiURLParam(req, "id", "run-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !served {
		t.Fatal("expected the run to be served from the database")
	}

	var resp dto.ReconciliationRunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "run-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestReconcileHandler_Get_NotFound(t *testing.T) {
	handler := NewReconcileHandler(&reconServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ReconciliationRun, error) {
			return nil, domain.ErrRunNotFound
		},
	}, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/reconciliations/run-1", nil)
	req = setChiURLParam(req, "id", "run-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReconcileHandler_List(t *testing.T) {
	handler := NewReconcileHandler(&reconServiceStub{
		listFn: func(ctx context.Context, input usecase.ListRunsInput) ([]*domain.ReconciliationRun, error) {
			return []*domain.ReconciliationRun{sampleRun("run-1"), sampleRun("run-2")}, nil
		},
	}, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/restaurants/rest-1/reconciliations", nil)
	req = setChiURLParam(req, "restaurantID", "rest-1")
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.ReconciliationRunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(resp))
	}
}
