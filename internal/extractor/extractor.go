// Package extractor recovers structured transaction fields from the noisy
// recognized text of a payment receipt capture. Extraction is best effort,
// never all-or-nothing: a partially illegible receipt still yields whatever
// fields were recoverable, with a lower confidence score.
package extractor

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/veripay/veripay/internal/domain"
)

const defaultPaymentMethod = "Mobile Payment"

// Config holds the per-field confidence weights. These are hand-tuned
// heuristics, not calibrated probabilities.
type Config struct {
	AmountWeight    float64
	ReferenceWeight float64
	DateWeight      float64
	PayerWeight     float64
	ReceiverWeight  float64
}

// DefaultConfig returns the documented default weights: amount highest,
// then reference id, then date, then names.
func DefaultConfig() Config {
	return Config{
		AmountWeight:    0.9,
		ReferenceWeight: 0.8,
		DateWeight:      0.7,
		PayerWeight:     0.6,
		ReceiverWeight:  0.6,
	}
}

// Extractor turns recognized receipt text into an ExtractedTransaction.
// It is pure and performs no I/O.
type Extractor struct {
	cfg Config
	log zerolog.Logger
}

// New creates an Extractor.
func New(cfg Config, log zerolog.Logger) *Extractor {
	return &Extractor{cfg: cfg, log: log.With().Str("component", "extractor").Logger()}
}

// Extract parses the recognized text into a structured transaction. A
// non-Other hint pins the bank family; otherwise it is detected from brand
// keywords in the text. Extract never fails: fields whose patterns do not
// match stay empty/zero and only lower the confidence score.
func (e *Extractor) Extract(text string, hint domain.BankFamily) domain.ExtractedTransaction {
	tx := domain.ExtractedTransaction{
		Currency:      "ETB",
		PaymentMethod: defaultPaymentMethod,
	}

	family := hint
	if !family.Known() {
		family = detectBankFamily(text)
		if hint != "" && hint != domain.BankOther {
			e.log.Warn().Str("hint", hint.String()).Msg("unrecognized bank family hint, using detection")
		}
	}
	tx.BankFamily = family

	if raw, ok := firstMatch(text, chainFor(family, func(p fieldPatterns) []*regexp.Regexp { return p.amount })); ok {
		amount, err := parseAmount(raw)
		if err != nil {
			e.log.Warn().Str("token", raw).Msg("unparseable amount token")
		} else {
			tx.Amount = amount
		}
	}

	if ref, ok := firstMatch(text, chainFor(family, func(p fieldPatterns) []*regexp.Regexp { return p.reference })); ok {
		tx.ReferenceID = ref
	}

	timeToken, _ := firstMatch(text, timePatterns)
	if raw, ok := firstMatch(text, chainFor(family, func(p fieldPatterns) []*regexp.Regexp { return p.date })); ok {
		if parsed, ok := parseDate(raw, timeToken); ok {
			tx.Date = parsed
		} else {
			// Keep the raw token so reconciliation can still compare strings.
			tx.RawDate = raw
			e.log.Debug().Str("token", raw).Msg("date token kept unparsed")
		}
	}

	if payer, ok := firstMatch(text, chainFor(family, func(p fieldPatterns) []*regexp.Regexp { return p.payer })); ok {
		tx.PayerName = cleanName(payer)
	}
	if receiver, ok := firstMatch(text, chainFor(family, func(p fieldPatterns) []*regexp.Regexp { return p.receiver })); ok {
		tx.ReceiverName = cleanName(receiver)
	}

	if method, ok := detectPaymentMethod(text); ok {
		tx.PaymentMethod = method
	}

	tx.Confidence = e.confidence(&tx)

	return tx
}

// confidence sums the weights of the populated fields over the total
// possible weight, so every recovered field strictly raises the score.
func (e *Extractor) confidence(tx *domain.ExtractedTransaction) float64 {
	total := e.cfg.AmountWeight + e.cfg.ReferenceWeight + e.cfg.DateWeight +
		e.cfg.PayerWeight + e.cfg.ReceiverWeight
	if total <= 0 {
		return 0
	}

	var sum float64
	if tx.HasAmount() {
		sum += e.cfg.AmountWeight
	}
	if tx.ReferenceID != "" {
		sum += e.cfg.ReferenceWeight
	}
	if tx.HasDate() || tx.RawDate != "" {
		sum += e.cfg.DateWeight
	}
	if tx.PayerName != "" {
		sum += e.cfg.PayerWeight
	}
	if tx.ReceiverName != "" {
		sum += e.cfg.ReceiverWeight
	}

	return sum / total
}

// detectBankFamily scans for brand keywords; first hit wins, BankOther when
// nothing matches.
func detectBankFamily(text string) domain.BankFamily {
	lower := strings.ToLower(text)
	for _, bk := range bankKeywords {
		for _, kw := range bk.keywords {
			if strings.Contains(lower, kw) {
				return bk.family
			}
		}
	}
	return domain.BankOther
}

func detectPaymentMethod(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, label := range paymentMethodLabels {
		if strings.Contains(lower, strings.ToLower(label)) {
			return label, true
		}
	}
	return "", false
}

// firstMatch tries patterns in order and returns the first captured group.
func firstMatch(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return m[1], true
		}
		if m[0] != "" {
			return m[0], true
		}
	}
	return "", false
}

// parseAmount strips thousands separators and parses the decimal value.
func parseAmount(raw string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", " ", "").Replace(raw)
	clean = strings.TrimSuffix(clean, ".")
	return decimal.NewFromString(clean)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func cleanName(raw string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
}
