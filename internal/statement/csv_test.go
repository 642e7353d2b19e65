package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/veripay/veripay/internal/domain"
)

func TestParseCSVCBEExport(t *testing.T) {
	input := strings.Join([]string{
		"Transaction ID,Amount,Value Date,From,To,Description",
		"FT25220ABCDE,\"1,234.56\",2025-08-08,Abebe Kebede,Chala Dula,transfer",
		"FT25220FGHIJ,500.00,08/08/2025,Sara Tesfaye,Chala Dula,payment",
	}, "\n")

	lines, err := ParseCSV(strings.NewReader(input), domain.BankCBE)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	first := lines[0]
	if first.ReferenceID != "FT25220ABCDE" {
		t.Errorf("ReferenceID = %q", first.ReferenceID)
	}
	if first.Amount.String() != "1234.56" {
		t.Errorf("Amount = %s, want 1234.56", first.Amount)
	}
	if want := time.Date(2025, 8, 8, 0, 0, 0, 0, time.UTC); !first.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", first.Date, want)
	}
	if first.Payer != "Abebe Kebede" || first.Receiver != "Chala Dula" {
		t.Errorf("parties = %q / %q", first.Payer, first.Receiver)
	}
	if first.BankFamily != domain.BankCBE {
		t.Errorf("BankFamily = %s", first.BankFamily)
	}
}

func TestParseCSVDashenHeaders(t *testing.T) {
	input := strings.Join([]string{
		"Transaction Ref,Transaction Amount,Date,Sender Name,Recipient Name,Narration",
		"OBTS08021725Z,\"10,027.60 ETB\",2025-08-08,Abebe Kebede,Chala Dula,mobile transfer",
	}, "\n")

	lines, err := ParseCSV(strings.NewReader(input), domain.BankDashen)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].ReferenceID != "OBTS08021725Z" {
		t.Errorf("ReferenceID = %q", lines[0].ReferenceID)
	}
	if lines[0].Amount.String() != "10027.6" {
		t.Errorf("Amount = %s, want 10027.6", lines[0].Amount)
	}
	if lines[0].Description != "mobile transfer" {
		t.Errorf("Description = %q", lines[0].Description)
	}
}

func TestParseCSVUnknownBankFallsBackToCBEAliases(t *testing.T) {
	input := "Reference,Amount\nABC123,75.00\n"

	lines, err := ParseCSV(strings.NewReader(input), domain.BankOther)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(lines) != 1 || lines[0].ReferenceID != "ABC123" {
		t.Fatalf("lines = %+v, want one row with reference ABC123", lines)
	}
}

func TestParseCSVDegradesBadCells(t *testing.T) {
	// Unparseable amount and date zero the field but keep the row while a
	// reference remains.
	input := "Reference,Amount,Date\nABC123,not-a-number,not-a-date\n"

	lines, err := ParseCSV(strings.NewReader(input), domain.BankCBE)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if !lines[0].Amount.IsZero() {
		t.Errorf("Amount = %s, want zero", lines[0].Amount)
	}
	if !lines[0].Date.IsZero() {
		t.Errorf("Date = %v, want zero", lines[0].Date)
	}
}

func TestParseCSVDropsUnreconcilableRows(t *testing.T) {
	input := strings.Join([]string{
		"Reference,Amount",
		",0",
		",not-a-number",
		"ABC123,50.00",
	}, "\n")

	lines, err := ParseCSV(strings.NewReader(input), domain.BankCBE)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(lines) != 1 || lines[0].ReferenceID != "ABC123" {
		t.Fatalf("lines = %+v, want only the reconcilable row", lines)
	}
}

func TestParseCSVErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"header only", "Reference,Amount\n"},
		{"no usable columns", "Foo,Bar\n1,2\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tc.input), domain.BankCBE); err == nil {
				t.Error("ParseCSV succeeded, want error")
			}
		})
	}
}

func TestParseStatementAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1,234.56", "1234.56"},
		{"1,234.56 ETB", "1234.56"},
		{"-100.00", "100"},
		{"garbage", "0"},
	}
	for _, tc := range cases {
		if got := parseStatementAmount(tc.in); got.String() != tc.want {
			t.Errorf("parseStatementAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestScrapeLines(t *testing.T) {
	text := strings.Join([]string{
		"Dashen Bank Statement for August 2025",
		"Payment REF12345678 amount 1,250.00 on 12/08/2025",
		"Transfer of 55.00 with no usable token",
		"REF99999999 100.00 row lacking any marker word",
		"Closing balance 9,999.99",
	}, "\n")

	lines := scrapeLines(text, domain.BankDashen)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1: %+v", len(lines), lines)
	}

	got := lines[0]
	if got.ReferenceID != "REF12345678" {
		t.Errorf("ReferenceID = %q", got.ReferenceID)
	}
	if got.Amount.String() != "1250" {
		t.Errorf("Amount = %s, want 1250", got.Amount)
	}
	if want := time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
	if got.BankFamily != domain.BankDashen {
		t.Errorf("BankFamily = %s", got.BankFamily)
	}
}
