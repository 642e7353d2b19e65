// Package statement parses uploaded bank statements into normalized
// StatementLine rows for the reconciliation engine. Column naming differs
// per bank family; alias maps translate whatever headers the bank exports
// into the canonical fields.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veripay/veripay/internal/domain"
)

// Canonical column names.
const (
	colReference   = "reference"
	colAmount      = "amount"
	colDate        = "date"
	colPayer       = "payer"
	colReceiver    = "receiver"
	colDescription = "description"
)

// columnAliases maps each bank family's exported header names to canonical
// columns. Banks not listed fall back to the CBE map, which carries the
// broadest set of aliases.
var columnAliases = map[domain.BankFamily]map[string][]string{
	domain.BankCBE: {
		colReference:   {"transaction id", "stn", "reference", "ref no"},
		colAmount:      {"amount", "transaction amount", "debit", "credit"},
		colDate:        {"date", "transaction date", "value date"},
		colPayer:       {"from", "sender", "account name"},
		colReceiver:    {"to", "receiver", "beneficiary"},
		colDescription: {"description", "narration", "remarks"},
	},
	domain.BankTelebirr: {
		colReference:   {"transaction id", "stn", "reference", "transaction number"},
		colAmount:      {"amount", "transaction amount"},
		colDate:        {"date", "transaction date", "transaction time"},
		colPayer:       {"from", "sender"},
		colReceiver:    {"to", "receiver"},
		colDescription: {"description", "purpose"},
	},
	domain.BankDashen: {
		colReference:   {"transaction id", "stn", "reference", "transaction ref", "ft ref"},
		colAmount:      {"amount", "transaction amount", "total"},
		colDate:        {"date", "transaction date"},
		colPayer:       {"from", "sender", "sender name"},
		colReceiver:    {"to", "receiver", "recipient name"},
		colDescription: {"description", "narration"},
	},
}

var statementDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-Jan-2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// ParseCSV reads a CSV statement export. Rows whose amount or date cannot
// be parsed are kept with that field zeroed; rows carrying neither a
// reference nor an amount are dropped since they cannot be reconciled.
func ParseCSV(r io.Reader, bank domain.BankFamily) ([]domain.StatementLine, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("statement csv has no data rows")
	}

	columns := mapColumns(records[0], bank)
	if _, ok := columns[colReference]; !ok {
		if _, ok := columns[colAmount]; !ok {
			return nil, fmt.Errorf("statement csv has no recognizable reference or amount column")
		}
	}

	lines := make([]domain.StatementLine, 0, len(records)-1)
	for _, record := range records[1:] {
		line := domain.StatementLine{BankFamily: bank}

		if idx, ok := columns[colReference]; ok && idx < len(record) {
			line.ReferenceID = strings.TrimSpace(record[idx])
		}
		if idx, ok := columns[colAmount]; ok && idx < len(record) {
			line.Amount = parseStatementAmount(record[idx])
		}
		if idx, ok := columns[colDate]; ok && idx < len(record) {
			line.Date = parseStatementDate(record[idx])
		}
		if idx, ok := columns[colPayer]; ok && idx < len(record) {
			line.Payer = strings.TrimSpace(record[idx])
		}
		if idx, ok := columns[colReceiver]; ok && idx < len(record) {
			line.Receiver = strings.TrimSpace(record[idx])
		}
		if idx, ok := columns[colDescription]; ok && idx < len(record) {
			line.Description = strings.TrimSpace(record[idx])
		}

		if line.ReferenceID == "" && !line.Amount.IsPositive() {
			continue
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// mapColumns resolves header names to canonical column indexes; the first
// header matching an alias wins for each canonical column.
func mapColumns(header []string, bank domain.BankFamily) map[string]int {
	aliases, ok := columnAliases[bank]
	if !ok {
		aliases = columnAliases[domain.BankCBE]
	}

	columns := make(map[string]int)
	for canonical, names := range aliases {
		for idx, col := range header {
			if _, taken := columns[canonical]; taken {
				break
			}
			colLower := strings.ToLower(strings.TrimSpace(col))
			for _, name := range names {
				if strings.Contains(colLower, name) {
					columns[canonical] = idx
					break
				}
			}
		}
	}
	return columns
}

func parseStatementAmount(s string) decimal.Decimal {
	clean := strings.NewReplacer(",", "", " ", "", "ETB", "", "etb", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

func parseStatementDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
