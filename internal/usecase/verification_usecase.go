package usecase

import (
	"context"
	"time"

	"github.com/veripay/veripay/internal/domain"
)

// VerificationUseCase turns a raw capture into a persisted, scored
// transaction record.
type VerificationUseCase struct {
	captures  CaptureRepository
	dedup     DedupStore
	extractor FieldExtractor
	analyzer  TamperAnalyzer
	idGen     IDGenerator
	dedupeTTL time.Duration
}

// NewVerificationUseCase creates a new VerificationUseCase. A non-positive
// dedupeTTL falls back to DefaultDedupeTTL.
func NewVerificationUseCase(
	captures CaptureRepository,
	dedup DedupStore,
	extractor FieldExtractor,
	analyzer TamperAnalyzer,
	idGen IDGenerator,
	dedupeTTL time.Duration,
) *VerificationUseCase {
	if dedupeTTL <= 0 {
		dedupeTTL = DefaultDedupeTTL
	}
	return &VerificationUseCase{
		captures:  captures,
		dedup:     dedup,
		extractor: extractor,
		analyzer:  analyzer,
		idGen:     idGen,
		dedupeTTL: dedupeTTL,
	}
}

// VerifyCaptureInput represents one submitted receipt capture.
type VerifyCaptureInput struct {
	RestaurantID string
	SubmittedBy  string
	Text         string
	ImageData    []byte
	BankHint     domain.BankFamily
}

// VerifyCapture extracts fields from the recognized text, analyzes the image
// for tampering, guards against duplicate reference IDs, and persists the
// outcome. Extraction and analysis are independent and run concurrently.
func (uc *VerificationUseCase) VerifyCapture(ctx context.Context, input VerifyCaptureInput) (*domain.VerifiedCapture, error) {
	var report domain.ForensicsReport
	analyzed := make(chan struct{})
	go func() {
		defer close(analyzed)
		report = uc.analyzer.Analyze(input.ImageData)
	}()

	txn := uc.extractor.Extract(input.Text, input.BankHint)
	<-analyzed

	if txn.ReferenceID != "" {
		ok, err := uc.dedup.Reserve(ctx, txn.ReferenceID, uc.dedupeTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrDuplicateReference
		}
	}

	now := time.Now().UTC()
	txn.ID = uc.idGen.Generate()
	txn.RestaurantID = input.RestaurantID
	txn.SubmittedBy = input.SubmittedBy
	txn.CreatedAt = now

	_, issues := domain.ValidateExtraction(&txn, now)

	capture := &domain.VerifiedCapture{
		Transaction: txn,
		Forensics:   report,
		Issues:      issues,
	}

	if err := uc.captures.Create(ctx, capture); err != nil {
		if txn.ReferenceID != "" {
			// Best effort. An orphaned claim expires with the TTL.
			_ = uc.dedup.Release(ctx, txn.ReferenceID)
		}
		return nil, err
	}

	return capture, nil
}

// GetCapture retrieves a verified capture by transaction ID.
func (uc *VerificationUseCase) GetCapture(ctx context.Context, id string) (*domain.VerifiedCapture, error) {
	return uc.captures.GetByID(ctx, id)
}

// ListCapturesInput represents input for listing a restaurant's captures.
type ListCapturesInput struct {
	RestaurantID string
	Limit        int
	Offset       int
}

// ListCaptures lists a restaurant's verified captures, newest first.
func (uc *VerificationUseCase) ListCaptures(ctx context.Context, input ListCapturesInput) ([]*domain.VerifiedCapture, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageLimit
	}
	if input.Limit > MaxPageLimit {
		input.Limit = MaxPageLimit
	}
	return uc.captures.ListByRestaurant(ctx, input.RestaurantID, input.Limit, input.Offset)
}
