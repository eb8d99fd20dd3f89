// Package snapshot encodes and decodes the persisted ledger document.
//
// Decoding is tolerant: a document that is not JSON yields an empty ledger,
// and within a readable document every field and every list entry falls back
// to its default independently. Nothing a user saved is rejected wholesale
// because one value is malformed.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
)

// Document keys.
const (
	keyChecking     = "checkingBalance"
	keyVault        = "vaultBalance"
	keyCards        = "cards"
	keyTransactions = "transactions"
	keyLegacyTxns   = "txns"
)

// Report describes what Decode had to repair.
type Report struct {
	Warnings []string
	Corrupt  bool
}

// Clean reports whether the document decoded without any fallback.
func (r Report) Clean() bool {
	return !r.Corrupt && len(r.Warnings) == 0
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type wireCard struct {
	CurrentBalance *json.Number `json:"currentBalance,omitempty"`
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Color          string       `json:"color"`
	DueDay         int          `json:"dueDay"`
}

type wireTransaction struct {
	ID       string      `json:"id"`
	CardID   string      `json:"cardId"`
	Date     string      `json:"date"`
	Merchant string      `json:"merchant"`
	Amount   json.Number `json:"amount"`
	Note     string      `json:"note"`
	Cleared  bool        `json:"cleared"`
}

type wireState struct {
	CheckingBalance json.Number       `json:"checkingBalance"`
	VaultBalance    json.Number       `json:"vaultBalance"`
	Cards           []wireCard        `json:"cards"`
	Transactions    []wireTransaction `json:"transactions"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Encode renders the ledger as an indented JSON document.
func Encode(s model.State) ([]byte, error) {
	w := wireState{
		CheckingBalance: number(s.Checking),
		VaultBalance:    number(s.Vault),
		Cards:           make([]wireCard, 0, len(s.Cards)),
		Transactions:    make([]wireTransaction, 0, len(s.Transactions)),
	}
	for _, c := range s.Cards {
		wc := wireCard{ID: c.ID, Name: c.Name, Color: c.Color, DueDay: c.DueDay}
		if c.CurrentBalance != nil {
			n := number(*c.CurrentBalance)
			wc.CurrentBalance = &n
		}
		w.Cards = append(w.Cards, wc)
	}
	for _, t := range s.Transactions {
		w.Transactions = append(w.Transactions, wireTransaction{
			ID:       t.ID,
			CardID:   t.CardID,
			Date:     t.Date.String(),
			Merchant: t.Merchant,
			Amount:   number(t.Amount),
			Note:     t.Note,
			Cleared:  t.Cleared,
		})
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode reads a ledger document. It never fails: see the package
// documentation for the fallback rules. Absent fields take their defaults and
// numeric due days are clamped silently. Every other fallback is reported.
func Decode(data []byte) (model.State, Report) {
	var report Report
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		report.Corrupt = true
		return model.State{}, report
	}

	var s model.State
	if raw, ok := present(doc, keyChecking); ok {
		v, err := parseMoney(raw)
		if err != nil {
			report.warnf("%s: %v, using 0", keyChecking, err)
		} else {
			s.Checking = v
		}
	}
	if raw, ok := present(doc, keyVault); ok {
		v, err := parseMoney(raw)
		if err != nil {
			report.warnf("%s: %v, using 0", keyVault, err)
		} else {
			s.Vault = v
		}
	}

	if raw, ok := present(doc, keyCards); ok {
		s.Cards = decodeCards(raw, &report)
	}

	key := keyTransactions
	raw, ok := present(doc, keyTransactions)
	if !ok {
		key = keyLegacyTxns
		raw, ok = present(doc, keyLegacyTxns)
	}
	if ok {
		s.Transactions = decodeTransactions(key, raw, &report)
	}

	return s, report
}

// present returns the raw value for key unless it is absent or null.
func present(doc map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := doc[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseMoney accepts a JSON number or a string holding one.
func parseMoney(raw json.RawMessage) (decimal.Decimal, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return decimal.Zero, errors.New("unreadable value")
	}
	switch x := v.(type) {
	case json.Number:
		n = x
	case string:
		x = strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		if x == "" {
			return decimal.Zero, nil
		}
		n = json.Number(x)
	default:
		return decimal.Zero, fmt.Errorf("expected a number, got %s", string(raw))
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", string(n))
	}
	return d, nil
}

func decodeEntries(key string, raw json.RawMessage, report *Report) []json.RawMessage {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		report.warnf("%s: not a list, using empty list", key)
		return nil
	}
	return entries
}

func decodeCards(raw json.RawMessage, report *Report) []model.Card {
	entries := decodeEntries(keyCards, raw, report)
	if entries == nil {
		return nil
	}
	cards := make([]model.Card, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		c, err := decodeCard(entry, fmt.Sprintf("%s[%d]", keyCards, i), report)
		if err != nil {
			report.warnf("%s[%d]: %v, skipped", keyCards, i, err)
			continue
		}
		if seen[c.ID] {
			report.warnf("%s[%d]: duplicate id %q, skipped", keyCards, i, c.ID)
			continue
		}
		seen[c.ID] = true
		cards = append(cards, c)
	}
	return cards
}

// decodeCard rejects entries that cannot form a valid card and reports
// fields that fell back to a default under path.
func decodeCard(entry json.RawMessage, path string, report *Report) (model.Card, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return model.Card{}, errors.New("not an object")
	}

	var c model.Card
	var err error
	if c.ID, err = requiredString(fields, "id"); err != nil {
		return model.Card{}, err
	}
	if c.Name, err = requiredString(fields, "name"); err != nil {
		return model.Card{}, err
	}
	c.Color = optionalString(fields, "color", path, report)

	c.DueDay = model.MinDueDay
	if raw, ok := present(fields, "dueDay"); ok {
		day, err := decodeDueDay(raw)
		if err != nil {
			report.warnf("%s.dueDay: %v, using %d", path, err, model.MinDueDay)
		}
		c.DueDay = day
	}
	if raw, ok := present(fields, "currentBalance"); ok {
		v, err := parseMoney(raw)
		if err != nil {
			return model.Card{}, fmt.Errorf("currentBalance: %w", err)
		}
		c.CurrentBalance = &v
	}
	if err := c.Validate(); err != nil {
		return model.Card{}, err
	}
	return c, nil
}

// decodeDueDay sanitizes numbers and numeric strings. Anything else is 1 and
// an error describing the value.
func decodeDueDay(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ledger.ParseDueDay(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return ledger.SanitizeDueDay(f), nil
	}
	return model.MinDueDay, fmt.Errorf("expected a number, got %s", string(raw))
}

func decodeTransactions(key string, raw json.RawMessage, report *Report) []model.Transaction {
	entries := decodeEntries(key, raw, report)
	if entries == nil {
		return nil
	}
	txns := make([]model.Transaction, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		t, err := decodeTransaction(entry, fmt.Sprintf("%s[%d]", key, i), report)
		if err != nil {
			report.warnf("%s[%d]: %v, skipped", key, i, err)
			continue
		}
		if seen[t.ID] {
			report.warnf("%s[%d]: duplicate id %q, skipped", key, i, t.ID)
			continue
		}
		seen[t.ID] = true
		txns = append(txns, t)
	}
	return txns
}

func decodeTransaction(entry json.RawMessage, path string, report *Report) (model.Transaction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return model.Transaction{}, errors.New("not an object")
	}

	var t model.Transaction
	var err error
	if t.ID, err = requiredString(fields, "id"); err != nil {
		return model.Transaction{}, err
	}
	if t.CardID, err = requiredString(fields, "cardId"); err != nil {
		return model.Transaction{}, err
	}

	rawDate, err := requiredString(fields, "date")
	if err != nil {
		return model.Transaction{}, err
	}
	if t.Date, err = civil.ParseDate(rawDate); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q", rawDate)
	}

	rawAmount, ok := present(fields, "amount")
	if !ok {
		return model.Transaction{}, errors.New("missing amount")
	}
	if t.Amount, err = parseMoney(rawAmount); err != nil {
		return model.Transaction{}, fmt.Errorf("amount: %w", err)
	}

	t.Merchant = optionalString(fields, "merchant", path, report)
	t.Note = optionalString(fields, "note", path, report)
	if raw, ok := present(fields, "cleared"); ok {
		t.Cleared = decodeCleared(raw, path, report)
	}
	if err := t.Validate(); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// decodeCleared reads a boolean. The strings "true" and "false" are read with
// a warning; anything else counts as pending.
func decodeCleared(raw json.RawMessage, path string, report *Report) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			report.warnf("%s.cleared: string %q, read as %t", path, s, v)
			return v
		}
	}
	report.warnf("%s.cleared: expected true or false, got %s, using false", path, string(raw))
	return false
}

func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := present(fields, key)
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s is not a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("empty %s", key)
	}
	return s, nil
}

func optionalString(fields map[string]json.RawMessage, key, path string, report *Report) string {
	raw, ok := present(fields, key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		report.warnf("%s.%s: expected a string, got %s, using empty", path, key, string(raw))
		return ""
	}
	return s
}
