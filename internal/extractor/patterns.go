package extractor

import (
	"regexp"

	"github.com/veripay/veripay/internal/domain"
)

// Per-bank pattern chains. Bank-specific formats are tried before generic
// catch-alls: the precise label-anchored patterns must win over the bare
// 8+ character alphanumeric fallback to avoid false positives.

type fieldPatterns struct {
	amount    []*regexp.Regexp
	reference []*regexp.Regexp
	date      []*regexp.Regexp
	payer     []*regexp.Regexp
	receiver  []*regexp.Regexp
}

// chainOrder is the order bank lists are consulted when the receipt's own
// family yields nothing. It mirrors how receipts are most commonly formatted:
// Dashen's labeled layout is the most specific, Telebirr's the least.
var chainOrder = []domain.BankFamily{domain.BankDashen, domain.BankCBE, domain.BankTelebirr}

var bankPatterns = map[domain.BankFamily]fieldPatterns{
	domain.BankDashen: {
		amount: compileAll(
			`(?i)Total:\s*(\d{1,3}(?:,\d{3})*\.?\d*)\s*ETB`,
			`(?i)(\d{1,3}(?:,\d{3})*\.?\d*)\s*\(ETB\)`,
			`(?i)(\d{1,3}(?:,\d{3})*\.?\d*)\s*ETB`,
		),
		reference: compileAll(
			`(?i)Transaction Ref:\s*([A-Z0-9]+)`,
			`(?i)FT Ref:\s*([A-Z0-9]+)`,
			`(?i)Transaction\s*Ref[:\s]*([A-Z0-9]+)`,
			`(?i)FT\s*Ref[:\s]*([A-Z0-9]+)`,
		),
		date: compileAll(
			`(?i)Date:\s*(\w{3}\s+\d{1,2},\s+\d{4}\s+\d{1,2}:\d{2}\s*[AP]M)`,
			`(?i)(\w{3}\s+\d{1,2},\s+\d{4}\s+\d{1,2}:\d{2}\s*[AP]M)`,
		),
		payer: compileAll(
			`(?i)Sender Name:\s*([A-Za-z\s]+)`,
			`(?i)from\s+([A-Za-z\s]+)`,
		),
		receiver: compileAll(
			`(?i)Recipient Name:\s*([A-Za-z\s]+)`,
			`(?i)to\s+([A-Za-z\s]+)`,
		),
	},
	domain.BankCBE: {
		amount: compileAll(
			`(?i)Total Amount Debited\s*ETB\s*(\d{1,3}(?:,\d{3})*\.?\d*)`,
			`(?i)ETB\s*(\d{1,3}(?:,\d{3})*\.?\d*)`,
			`(?i)(\d{1,3}(?:,\d{3})*\.?\d*)\s*debited`,
		),
		reference: compileAll(
			`(?i)transaction ID:\s*([A-Z0-9]+)`,
			`FT\s*([A-Z0-9]+)`,
			`(?i)ID:\s*([A-Z0-9]+)`,
		),
		date: compileAll(
			`(?i)on\s+(\d{2}-\w{3}-\d{4})`,
			`(\d{2}-\w{3}-\d{4})`,
		),
		payer: compileAll(
			`(?i)debited from\s+([A-Za-z\s/]+)`,
			`(?i)from\s+([A-Za-z\s]+)`,
		),
		receiver: compileAll(
			`(?i)for\s+([A-Za-z\s-]+)`,
			`(?i)to\s+([A-Za-z\s-]+)`,
		),
	},
	domain.BankTelebirr: {
		amount: compileAll(
			`(?i)-(\d{1,3}(?:,\d{3})*\.?\d*)\s*\(ETB\)`,
			`(?i)(\d{1,3}(?:,\d{3})*\.?\d*)\s*\(ETB\)`,
		),
		reference: compileAll(
			`(?i)Transaction Number:\s*([A-Z0-9]+)`,
			`(?i)Transaction\s*Number[:\s]*([A-Z0-9]+)`,
			`(?i)TXN[:\s]*([A-Z0-9]+)`,
		),
		date: compileAll(
			`(?i)Transaction Time:\s*(\d{4}/\d{2}/\d{2}\s+\d{2}:\d{2}:\d{2})`,
			`(\d{4}/\d{2}/\d{2}\s+\d{2}:\d{2}:\d{2})`,
		),
		// Telebirr receipts only carry the counterparty; "Transaction To"
		// is the receiver, so the payer chain falls through to generics.
		payer: compileAll(
			`(?i)Payer[:\s]+([A-Za-z\s]+)`,
		),
		receiver: compileAll(
			`(?i)Transaction To:\s*([A-Za-z\s]+)`,
			`(?i)to\s+([A-Za-z\s]+)`,
		),
	},
}

// genericPatterns are the catch-all fallbacks from the non-bank-aware
// extraction path. Always consulted last.
var genericPatterns = fieldPatterns{
	amount: compileAll(
		`(?i)Amount[:\s]*([0-9,]+\.?[0-9]*)`,
		`(?i)Total[:\s]*([0-9,]+\.?[0-9]*)`,
		`(?i)([0-9,]+\.?[0-9]*)\s*Birr`,
		`(?i)([0-9,]+\.?[0-9]*)\s*ETB`,
	),
	reference: compileAll(
		`(?i)STN[:\s]*([A-Z0-9]{8,})`,
		`(?i)Transaction[:\s]*([A-Z0-9]{8,})`,
		`(?i)Ref[:\s]*([A-Z0-9]{8,})`,
		`([A-Z0-9]{8,})`,
	),
	date: compileAll(
		`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`,
		`(\d{1,2}\s+[A-Za-z]+\s+\d{4})`,
	),
	payer: compileAll(
		`(?i)From[:\s]*([A-Za-z\s]+)`,
		`(?i)Sender[:\s]*([A-Za-z\s]+)`,
		`(?i)Customer[:\s]+([A-Za-z\s]+)`,
	),
	receiver: compileAll(
		`(?i)To[:\s]*([A-Za-z\s]+)`,
		`(?i)Receiver[:\s]*([A-Za-z\s]+)`,
		`(?i)Beneficiary[:\s]*([A-Za-z\s]+)`,
		`(?i)Merchant[:\s]+([A-Za-z\s]+)`,
	),
}

// timePatterns match a standalone clock token merged into date-only dates.
var timePatterns = compileAll(
	`(?i)Time:\s*(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AP]M)?)`,
	`(\d{1,2}:\d{2}:\d{2})`,
	`(?i)(\d{1,2}:\d{2}(?:\s*[AP]M)?)`,
)

// bankKeywords drive bank-family detection: first keyword hit wins.
var bankKeywords = []struct {
	family   domain.BankFamily
	keywords []string
}{
	{domain.BankCBE, []string{"cbe", "commercial bank"}},
	{domain.BankTelebirr, []string{"telebirr", "ethio telecom"}},
	{domain.BankDashen, []string{"dashen"}},
}

// paymentMethodLabels is the ordered label list for the free-form payment
// method field; specific mobile-money brands before generic channel names.
var paymentMethodLabels = []string{
	"Telebirr",
	"Mobile Banking",
	"CBE Birr",
	"Chapa",
	"Hellocash",
	"Amole",
	"Kacha",
	"M-Birr",
	"Bank Transfer",
	"Internet Banking",
	"ATM",
	"POS",
	"Card Payment",
	"Wire Transfer",
	"SWIFT",
	"Transfer Money",
	"Money Transfer",
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// chainFor assembles the ordered pattern chain for one field: the receipt's
// own family first, the remaining bank lists next, generics last.
func chainFor(family domain.BankFamily, pick func(fieldPatterns) []*regexp.Regexp) []*regexp.Regexp {
	var chain []*regexp.Regexp
	if p, ok := bankPatterns[family]; ok {
		chain = append(chain, pick(p)...)
	}
	for _, f := range chainOrder {
		if f == family {
			continue
		}
		chain = append(chain, pick(bankPatterns[f])...)
	}
	return append(chain, pick(genericPatterns)...)
}
