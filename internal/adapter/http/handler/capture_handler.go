package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veripay/veripay/internal/adapter/http/dto"
	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/infrastructure/metrics"
	"github.com/veripay/veripay/internal/usecase"
)

// VerificationService defines the behavior needed by CaptureHandler.
type VerificationService interface {
	VerifyCapture(ctx context.Context, input usecase.VerifyCaptureInput) (*domain.VerifiedCapture, error)
	GetCapture(ctx context.Context, id string) (*domain.VerifiedCapture, error)
	ListCaptures(ctx context.Context, input usecase.ListCapturesInput) ([]*domain.VerifiedCapture, error)
}

// CaptureHandler handles receipt capture endpoints.
type CaptureHandler struct {
	verifyUC VerificationService
	metrics  *metrics.Metrics
}

// NewCaptureHandler creates a new CaptureHandler.
func NewCaptureHandler(verifyUC VerificationService, m *metrics.Metrics) *CaptureHandler {
	return &CaptureHandler{verifyUC: verifyUC, metrics: m}
}

// Verify runs the full verification pipeline on a submitted capture.
func (h *CaptureHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	start := time.Now()
	capture, err := h.verifyUC.VerifyCapture(r.Context(), input)
	if err != nil {
		if h.metrics != nil {
			h.metrics.CapturesRejected.WithLabelValues(rejectionReason(err)).Inc()
		}
		writeError(w, mapDomainError(err), "verification failed", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.CapturesProcessed.Inc()
		h.metrics.SuspicionLevels.WithLabelValues(string(capture.Forensics.SuspicionLevel)).Inc()
		h.metrics.ExtractionConfidence.Observe(capture.Transaction.Confidence)
		h.metrics.FraudScore.Observe(capture.Forensics.FraudScore)
		h.metrics.VerifyDuration.Observe(time.Since(start).Seconds())
	}

	writeJSON(w, http.StatusCreated, dto.CaptureFromDomain(capture))
}

// Get retrieves a verified capture by transaction ID.
func (h *CaptureHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing capture ID", "")
		return
	}

	capture, err := h.verifyUC.GetCapture(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get capture", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CaptureFromDomain(capture))
}

// List lists a restaurant's verified captures.
func (h *CaptureHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, "missing restaurant ID", "")
		return
	}

	captures, err := h.verifyUC.ListCaptures(r.Context(), usecase.ListCapturesInput{
		RestaurantID: restaurantID,
		Limit:        parseIntQuery(r, "limit", 20),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list captures", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CapturesFromDomain(captures))
}

func rejectionReason(err error) string {
	switch mapDomainError(err) {
	case http.StatusConflict:
		return "duplicate_reference"
	case http.StatusUnprocessableEntity:
		return "unreadable_image"
	default:
		return "internal"
	}
}
