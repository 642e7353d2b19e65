package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is one normalized row of an official bank statement.
// Column-name normalization per bank family happens at ingestion; the
// reconciliation engine only consumes rows.
type StatementLine struct {
	ReferenceID string
	Amount      decimal.Decimal
	Date        time.Time
	Payer       string
	Receiver    string
	Description string
	BankFamily  BankFamily
}
