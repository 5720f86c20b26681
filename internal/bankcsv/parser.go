// Package bankcsv parses delimited bank export files into transactions.
//
// The first line of a file is a header used only to sniff the column
// layout; it is never emitted as data. Three layouts are recognized:
// credit-card exports, checking exports, and a generic positional
// fallback. Row parsing is best-effort: a malformed or zero-amount row is
// skipped, never fatal.
package bankcsv

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/harborstreet/tally/internal/model"
)

// Format identifies a recognized export layout.
type Format string

// Recognized layouts.
const (
	FormatCredit   Format = "credit"
	FormatChecking Format = "checking"
	FormatGeneric  Format = "generic"
)

// Parser turns raw CSV text into normalized transactions.
type Parser struct {
	now func() time.Time
}

// NewParser creates a CSV parser.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// Parse converts the export text into transactions for the given account.
// Individual rows never fail the parse; a file with only a header (or
// nothing at all) yields an empty result.
func (p *Parser) Parse(text, accountID string) []model.Transaction {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) <= 1 {
		return nil
	}

	format := DetectFormat(lines[0])
	slog.Debug("parsing CSV export", "format", format, "account", accountID, "rows", len(lines)-1)

	var transactions []model.Transaction
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line)

		var txn *model.Transaction
		switch {
		case format == FormatCredit && len(fields) >= 7:
			txn = p.parseCreditRow(fields, accountID)
		case format == FormatChecking && len(fields) >= 5:
			txn = p.parseCheckingRow(fields, accountID)
		case len(fields) >= 4:
			txn = p.parseGenericRow(fields, accountID)
		}
		if txn != nil {
			transactions = append(transactions, *txn)
		}
	}

	return transactions
}

// DetectFormat sniffs the export layout from the header line.
func DetectFormat(header string) Format {
	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "card") && strings.Contains(h, "transaction date"):
		return FormatCredit
	case strings.Contains(h, "details") && strings.Contains(h, "posting date"):
		return FormatChecking
	default:
		return FormatGeneric
	}
}

// Credit layout: card, transaction date, post date, description, category,
// type, amount, memo. Purchases reduce available credit, so the sign is
// forced negative regardless of what the source carries.
func (p *Parser) parseCreditRow(fields []string, accountID string) *model.Transaction {
	amount := parseFloat(fields[6])
	if amount == 0 {
		return nil
	}
	if amount > 0 {
		amount = -amount
	}
	return &model.Transaction{
		Date:        p.parseDate(fields[1]),
		Description: orDefault(fields[3], "No Description"),
		Amount:      amount,
		Account:     accountID,
		Type:        orDefault(fields[5], "Purchase"),
	}
}

// Checking layout: details, posting date, description, amount, type,
// balance, check/slip#. The bank's native sign is preserved.
func (p *Parser) parseCheckingRow(fields []string, accountID string) *model.Transaction {
	amount := parseFloat(fields[3])
	if amount == 0 {
		return nil
	}
	txn := &model.Transaction{
		Date:        p.parseDate(fields[1]),
		Description: orDefault(fields[2], "No Description"),
		Amount:      amount,
		Account:     accountID,
		Type:        orDefault(fields[4], "Debit"),
	}
	if len(fields) > 5 {
		if balance := parseFloat(fields[5]); balance != 0 {
			txn.Balance = &balance
		}
	}
	return txn
}

// Generic layout: date first, description second, amount located by
// scanning from the last field back to index 2.
func (p *Parser) parseGenericRow(fields []string, accountID string) *model.Transaction {
	amount := scanAmount(fields)
	if amount == 0 {
		return nil
	}
	description := fields[1]
	if description == "" {
		description = fields[2]
	}
	return &model.Transaction{
		Date:        p.parseDate(fields[0]),
		Description: orDefault(description, "No Description"),
		Amount:      amount,
		Account:     accountID,
	}
}

// splitLine splits a CSV line on commas, honoring double-quote-enclosed
// fields. Quotes are stripped and fields are trimmed.
func splitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// scanAmount finds the first field from the end that parses to a non-zero
// float, never looking earlier than index 2 (date and description).
func scanAmount(fields []string) float64 {
	for i := len(fields) - 1; i >= 2; i-- {
		if amount := parseFloat(fields[i]); amount != 0 {
			return amount
		}
	}
	return 0
}

// parseFloat parses a currency field, tolerating $ and thousands commas.
// Unparsable input yields 0, which callers treat as a non-transactional row.
func parseFloat(field string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(field))
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}

// parseDate accepts MM/DD/YYYY explicitly and falls back to common layouts;
// an unparsable date resolves to the current date rather than failing the row.
func (p *Parser) parseDate(field string) time.Time {
	field = strings.TrimSpace(field)
	if field == "" {
		return today(p.now())
	}

	if strings.Contains(field, "/") {
		parts := strings.Split(field, "/")
		if len(parts) == 3 {
			month, errM := strconv.Atoi(parts[0])
			day, errD := strconv.Atoi(parts[1])
			year, errY := strconv.Atoi(parts[2])
			if errM == nil && errD == nil && errY == nil && month >= 1 && month <= 12 && day >= 1 && day <= 31 {
				return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			}
		}
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, "Jan 2, 2006", "01/02/2006"} {
		if t, err := time.Parse(layout, field); err == nil {
			return today(t)
		}
	}

	slog.Debug("unparsable date in CSV row, using current date", "value", field)
	return today(p.now())
}

func today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
