// Package csvimport reads card purchases from spreadsheet exports.
//
// The first row is a header naming the columns date, merchant and amount, with
// an optional note column. Column order and header case do not matter.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/shopspring/decimal"
)

// Errors returned while reading a CSV file.
var (
	ErrEmptyFile     = errors.New("csv file is empty")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidRow    = errors.New("invalid row")
)

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006/01/02"}

type columns struct {
	date, merchant, amount, note int
}

// Read parses every data row. Blank lines are ignored; a malformed row stops
// the read with an error naming its line.
func Read(r io.Reader) ([]ledger.NewTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []ledger.NewTransaction
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRow, err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		row, err := cols.parse(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidRow, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseHeader(header []string) (columns, error) {
	cols := columns{date: -1, merchant: -1, amount: -1, note: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "date":
			cols.date = i
		case "merchant":
			cols.merchant = i
		case "amount":
			cols.amount = i
		case "note":
			cols.note = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.merchant < 0 {
		missing = append(missing, "merchant")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) parse(record []string) (ledger.NewTransaction, error) {
	date, err := ParseDate(field(record, c.date))
	if err != nil {
		return ledger.NewTransaction{}, err
	}
	amount, err := ParseAmount(field(record, c.amount))
	if err != nil {
		return ledger.NewTransaction{}, err
	}
	return ledger.NewTransaction{
		Date:     date,
		Amount:   amount,
		Merchant: field(record, c.merchant),
		Note:     field(record, c.note),
	}, nil
}

// ParseDate accepts ISO dates (2025-07-30) and US dates (07/30/2025).
func ParseDate(raw string) (civil.Date, error) {
	raw = strings.TrimSpace(raw)
	if d, err := civil.ParseDate(raw); err == nil {
		return d, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date %q", raw)
}

// ParseAmount reads a money value, ignoring currency symbols and thousands
// separators. Accounting negatives like (12.50) are accepted.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	negative := strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")")
	if negative {
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return decimal.Zero, errors.New("missing amount")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
