package dto

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/veripay/veripay/internal/domain"
)

func TestVerifyCaptureRequest_Validate(t *testing.T) {
	tests := []struct {
		name        string
		request     VerifyCaptureRequest
		expectError bool
	}{
		{
			name:    "text only",
			request: VerifyCaptureRequest{RestaurantID: "rest-1", Text: "receipt"},
		},
		{
			name:    "image only",
			request: VerifyCaptureRequest{RestaurantID: "rest-1", ImageBase64: "aGVsbG8="},
		},
		{
			name:        "missing restaurant",
			request:     VerifyCaptureRequest{Text: "receipt"},
			expectError: true,
		},
		{
			name:        "no payload",
			request:     VerifyCaptureRequest{RestaurantID: "rest-1"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.expectError {
				t.Fatalf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestVerifyCaptureRequest_ToUseCaseInput(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}
	req := &VerifyCaptureRequest{
		RestaurantID: "rest-1",
		SubmittedBy:  "waiter-7",
		Text:         "CBE transfer",
		ImageBase64:  base64.StdEncoding.EncodeToString(image),
		BankHint:     "Commercial Bank of Ethiopia",
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("ToUseCaseInput() error = %v", err)
	}
	if got.RestaurantID != "rest-1" || got.SubmittedBy != "waiter-7" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if string(got.ImageData) != string(image) {
		t.Fatalf("ImageData = %v, want decoded payload", got.ImageData)
	}
	if got.BankHint != domain.BankCBE {
		t.Fatalf("BankHint = %s, want cbe", got.BankHint)
	}
}

func TestVerifyCaptureRequest_ToUseCaseInput_BadBase64(t *testing.T) {
	req := &VerifyCaptureRequest{RestaurantID: "rest-1", ImageBase64: "!!not base64!!"}
	if _, err := req.ToUseCaseInput(); err == nil {
		t.Fatal("expected error for invalid base64 payload")
	}
}

func TestReconcileRequest_Validate(t *testing.T) {
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		request     ReconcileRequest
		expectError bool
	}{
		{
			name:    "valid period",
			request: ReconcileRequest{RestaurantID: "rest-1", From: from, To: to},
		},
		{
			name:        "missing restaurant",
			request:     ReconcileRequest{From: from, To: to},
			expectError: true,
		},
		{
			name:        "missing period",
			request:     ReconcileRequest{RestaurantID: "rest-1"},
			expectError: true,
		},
		{
			name:        "inverted period",
			request:     ReconcileRequest{RestaurantID: "rest-1", From: to, To: from},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.expectError {
				t.Fatalf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestStatementLine_ToDomain(t *testing.T) {
	date := "2025-08-08"
	line := &StatementLine{
		ReferenceID: "FT25220ABCDE",
		Amount:      "150.00",
		Date:        &date,
		Payer:       "Abebe Kebede",
	}

	got, err := line.ToDomain(domain.BankCBE)
	if err != nil {
		t.Fatalf("ToDomain() error = %v", err)
	}
	if got.ReferenceID != "FT25220ABCDE" || got.Amount.String() != "150" {
		t.Fatalf("unexpected line: %+v", got)
	}
	if want := time.Date(2025, 8, 8, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Fatalf("Date = %v, want %v", got.Date, want)
	}
	if got.BankFamily != domain.BankCBE {
		t.Fatalf("BankFamily = %s, want cbe", got.BankFamily)
	}
}

func TestStatementLine_ToDomain_Errors(t *testing.T) {
	badDate := "08/08/2025"

	tests := []struct {
		name string
		line StatementLine
	}{
		{"invalid amount", StatementLine{ReferenceID: "A", Amount: "abc"}},
		{"invalid date", StatementLine{ReferenceID: "A", Amount: "1", Date: &badDate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.line.ToDomain(domain.BankCBE); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
