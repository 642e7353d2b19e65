package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/veripay/veripay/internal/adapter/http/dto"
	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/infrastructure/metrics"
	"github.com/veripay/veripay/internal/statement"
	"github.com/veripay/veripay/internal/usecase"
)

// Statement uploads are bounded; a monthly settlement export is far below
// this.
const maxStatementBytes = 32 << 20

// RunCacheTTL is how long serialized run reports stay cached.
const RunCacheTTL = time.Hour

// ReconciliationService defines the behavior needed by ReconcileHandler.
type ReconciliationService interface {
	RunReconciliation(ctx context.Context, input usecase.RunReconciliationInput) (*domain.ReconciliationRun, error)
	GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error)
	ListRuns(ctx context.Context, input usecase.ListRunsInput) ([]*domain.ReconciliationRun, error)
}

// RunCache caches serialized run responses. Get returns (nil, nil) on a
// miss; an error means the cache backend failed. The database stays
// authoritative either way.
type RunCache interface {
	Get(ctx context.Context, runID string) ([]byte, error)
	Set(ctx context.Context, runID string, report []byte, ttl time.Duration) error
}

// ReconcileHandler handles reconciliation endpoints.
type ReconcileHandler struct {
	reconUC ReconciliationService
	cache   RunCache
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(reconUC ReconciliationService, cache RunCache, m *metrics.Metrics, log zerolog.Logger) *ReconcileHandler {
	return &ReconcileHandler{reconUC: reconUC, cache: cache, metrics: m, log: log}
}

// Run starts a reconciliation run. The statement arrives either as a JSON
// body with explicit lines or as a multipart upload of the bank's CSV or
// PDF export.
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	var input usecase.RunReconciliationInput
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		input, err = parseMultipartRun(r)
	} else {
		input, err = parseJSONRun(r)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	run, err := h.reconUC.RunReconciliation(r.Context(), input)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ReconciliationErrors.Inc()
		}
		writeError(w, mapDomainError(err), "reconciliation failed", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.ReconciliationRuns.Inc()
		h.metrics.MatchRate.Set(run.Result.Summary.MatchRate)
		for _, d := range run.Result.Discrepancies {
			h.metrics.DiscrepanciesFound.WithLabelValues(string(d.Type)).Inc()
		}
	}

	writeJSON(w, http.StatusCreated, dto.RunFromDomain(run))
}

// Get retrieves a persisted run, serving cached reports when available.
func (h *ReconcileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	if h.cache != nil {
		cached, err := h.cache.Get(r.Context(), id)
		switch {
		case err != nil:
			h.log.Warn().Err(err).Str("run_id", id).Msg("run cache read failed")
		case cached != nil:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	run, err := h.reconUC.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get run", err.Error())
		return
	}

	resp := dto.RunFromDomain(run)
	if h.cache != nil {
		if body, err := json.Marshal(resp); err == nil {
			// Best effort. A failed cache write only costs the next read.
			_ = h.cache.Set(r.Context(), id, body, RunCacheTTL)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// List lists a restaurant's runs.
func (h *ReconcileHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, "missing restaurant ID", "")
		return
	}

	runs, err := h.reconUC.ListRuns(r.Context(), usecase.ListRunsInput{
		RestaurantID: restaurantID,
		Limit:        parseIntQuery(r, "limit", 20),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunsFromDomain(runs))
}

func parseJSONRun(r *http.Request) (usecase.RunReconciliationInput, error) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return usecase.RunReconciliationInput{}, err
	}
	if err := req.Validate(); err != nil {
		return usecase.RunReconciliationInput{}, err
	}

	bank := domain.ParseBankFamily(req.BankFamily)
	// A request without a lines field keeps lines nil, which the engine
	// reports as missing statement data. An explicit empty array is a
	// valid, empty statement.
	var lines []domain.StatementLine
	if req.Lines != nil {
		lines = make([]domain.StatementLine, 0, len(req.Lines))
		for i := range req.Lines {
			line, err := req.Lines[i].ToDomain(bank)
			if err != nil {
				return usecase.RunReconciliationInput{}, err
			}
			lines = append(lines, line)
		}
	}

	return usecase.RunReconciliationInput{
		RestaurantID: req.RestaurantID,
		From:         req.From,
		To:           req.To,
		Lines:        lines,
	}, nil
}

func parseMultipartRun(r *http.Request) (usecase.RunReconciliationInput, error) {
	if err := r.ParseMultipartForm(maxStatementBytes); err != nil {
		return usecase.RunReconciliationInput{}, err
	}

	restaurantID := r.FormValue("restaurant_id")
	if restaurantID == "" {
		return usecase.RunReconciliationInput{}, errors.New("restaurant_id is required")
	}
	from, err := time.Parse("2006-01-02", r.FormValue("from"))
	if err != nil {
		return usecase.RunReconciliationInput{}, errors.New("from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", r.FormValue("to"))
	if err != nil {
		return usecase.RunReconciliationInput{}, errors.New("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return usecase.RunReconciliationInput{}, errors.New("to must not precede from")
	}
	bank := domain.ParseBankFamily(r.FormValue("bank_family"))

	file, header, err := r.FormFile("statement")
	if err != nil {
		return usecase.RunReconciliationInput{}, errors.New("statement file is required")
	}
	defer file.Close()

	var lines []domain.StatementLine
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		lines, err = statement.ParseCSV(file, bank)
	case ".pdf":
		var data []byte
		data, err = io.ReadAll(file)
		if err == nil {
			lines, err = statement.ParsePDF(bytes.NewReader(data), int64(len(data)), bank)
		}
	default:
		return usecase.RunReconciliationInput{}, errors.New("statement must be a .csv or .pdf file")
	}
	if err != nil {
		return usecase.RunReconciliationInput{}, err
	}

	return usecase.RunReconciliationInput{
		RestaurantID: restaurantID,
		From:         from,
		To:           to,
		Lines:        lines,
	}, nil
}
