package dto

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/usecase"
)

// VerifyCaptureRequest represents a submitted receipt capture. The image is
// carried base64-encoded; the text is the OCR output produced client-side.
type VerifyCaptureRequest struct {
	RestaurantID string `json:"restaurant_id"`
	SubmittedBy  string `json:"submitted_by"`
	Text         string `json:"text"`
	ImageBase64  string `json:"image_base64,omitempty"`
	BankHint     string `json:"bank_hint,omitempty"`
}

// Validate checks required fields.
func (r *VerifyCaptureRequest) Validate() error {
	if r.RestaurantID == "" {
		return errors.New("restaurant_id is required")
	}
	if r.Text == "" && r.ImageBase64 == "" {
		return errors.New("either text or image_base64 is required")
	}
	return nil
}

// ToUseCaseInput converts to use case input, decoding the image payload.
func (r *VerifyCaptureRequest) ToUseCaseInput() (usecase.VerifyCaptureInput, error) {
	var image []byte
	if r.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(r.ImageBase64)
		if err != nil {
			return usecase.VerifyCaptureInput{}, errors.New("image_base64 is not valid base64")
		}
		image = decoded
	}

	return usecase.VerifyCaptureInput{
		RestaurantID: r.RestaurantID,
		SubmittedBy:  r.SubmittedBy,
		Text:         r.Text,
		ImageData:    image,
		BankHint:     domain.ParseBankFamily(r.BankHint),
	}, nil
}

// ReconcileRequest starts a reconciliation run from explicit statement
// lines. Statement files (CSV, PDF) go through the multipart form variant.
type ReconcileRequest struct {
	RestaurantID string          `json:"restaurant_id"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	BankFamily   string          `json:"bank_family,omitempty"`
	Lines        []StatementLine `json:"lines"`
}

// Validate checks required fields.
func (r *ReconcileRequest) Validate() error {
	if r.RestaurantID == "" {
		return errors.New("restaurant_id is required")
	}
	if r.From.IsZero() || r.To.IsZero() {
		return errors.New("from and to are required")
	}
	if r.To.Before(r.From) {
		return errors.New("to must not precede from")
	}
	return nil
}

// StatementLine is one settlement row in a reconcile request.
type StatementLine struct {
	ReferenceID string  `json:"reference_id"`
	Amount      string  `json:"amount"`
	Date        *string `json:"date,omitempty"`
	Payer       string  `json:"payer,omitempty"`
	Receiver    string  `json:"receiver,omitempty"`
	Description string  `json:"description,omitempty"`
}

// ToDomain converts a request line. Dates use ISO 8601 calendar form.
func (l *StatementLine) ToDomain(bank domain.BankFamily) (domain.StatementLine, error) {
	amount, err := decimal.NewFromString(l.Amount)
	if err != nil {
		return domain.StatementLine{}, errors.New("amount is not a valid decimal")
	}

	line := domain.StatementLine{
		ReferenceID: l.ReferenceID,
		Amount:      amount,
		Payer:       l.Payer,
		Receiver:    l.Receiver,
		Description: l.Description,
		BankFamily:  bank,
	}
	if l.Date != nil && *l.Date != "" {
		d, err := time.Parse("2006-01-02", *l.Date)
		if err != nil {
			return domain.StatementLine{}, errors.New("date must be YYYY-MM-DD")
		}
		line.Date = d
	}
	return line, nil
}
