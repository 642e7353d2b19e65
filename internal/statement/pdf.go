package statement

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/veripay/veripay/internal/domain"
)

var (
	pdfAmountPattern = regexp.MustCompile(`([0-9,]+\.[0-9]{2})`)
	pdfDatePattern   = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2})`)
	pdfRefPattern    = regexp.MustCompile(`([A-Z0-9]{8,})`)
)

// transactionKeywords gate which PDF lines are treated as statement rows.
var transactionKeywords = []string{"transaction", "payment", "transfer", "debit", "credit"}

// ParsePDF extracts text from a PDF statement and scrapes transaction rows
// line by line. Only lines carrying both a reference token and a positive
// amount survive; everything else on the page is ignored.
func ParsePDF(r io.ReaderAt, size int64, bank domain.BankFamily) ([]domain.StatementLine, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening statement pdf: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page degrades that page only.
			continue
		}
		text.WriteString(content)
		text.WriteString("\n")
	}

	lines := scrapeLines(text.String(), bank)
	if len(lines) == 0 {
		return nil, fmt.Errorf("no transaction rows found in statement pdf")
	}
	return lines, nil
}

func scrapeLines(text string, bank domain.BankFamily) []domain.StatementLine {
	var out []domain.StatementLine

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || !containsKeyword(line) {
			continue
		}

		entry := domain.StatementLine{
			BankFamily:  bank,
			Description: line,
		}
		if m := pdfAmountPattern.FindStringSubmatch(line); m != nil {
			entry.Amount = parseStatementAmount(m[1])
		}
		if m := pdfDatePattern.FindStringSubmatch(line); m != nil {
			entry.Date = parseStatementDate(m[1])
		}
		if m := pdfRefPattern.FindStringSubmatch(line); m != nil {
			entry.ReferenceID = m[1]
		}

		if entry.ReferenceID == "" || !entry.Amount.IsPositive() {
			continue
		}
		out = append(out, entry)
	}

	return out
}

func containsKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range transactionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
