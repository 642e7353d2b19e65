package domain

import "strings"

// BankFamily identifies which Ethiopian payment provider issued a receipt.
type BankFamily string

const (
	BankCBE      BankFamily = "cbe"
	BankDashen   BankFamily = "dashen"
	BankTelebirr BankFamily = "telebirr"
	BankOther    BankFamily = "other"
)

// ParseBankFamily normalizes a free-form bank label to a BankFamily.
// Unrecognized labels map to BankOther.
func ParseBankFamily(s string) BankFamily {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cbe", "commercial bank of ethiopia":
		return BankCBE
	case "dashen", "dashen bank":
		return BankDashen
	case "telebirr", "ethio telecom":
		return BankTelebirr
	default:
		return BankOther
	}
}

// String returns the canonical lowercase label.
func (b BankFamily) String() string {
	return string(b)
}

// Known reports whether the family is one of the explicitly supported banks.
func (b BankFamily) Known() bool {
	switch b {
	case BankCBE, BankDashen, BankTelebirr:
		return true
	}
	return false
}
