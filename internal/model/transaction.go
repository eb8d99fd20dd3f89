package model

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is a purchase made on a card. It stays pending until Cleared.
type Transaction struct {
	Date     civil.Date
	Amount   decimal.Decimal
	ID       string
	CardID   string
	Merchant string
	Note     string
	Cleared  bool
}

// Pending reports whether the amount still has to be moved out of checking.
func (t Transaction) Pending() bool {
	return !t.Cleared
}

// Validate ensures the transaction can be stored.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if strings.TrimSpace(t.CardID) == "" {
		return fmt.Errorf("%w: missing card ID", ErrInvalidTransaction)
	}
	if !t.Date.IsValid() {
		return fmt.Errorf("%w: invalid date %s", ErrInvalidTransaction, t.Date)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidTransaction, t.Amount.StringFixed(2))
	}
	return nil
}

// GenerateHash creates a hash for duplicate detection on import.
func (t Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.String(),
		t.Amount.StringFixed(2),
		strings.ToLower(strings.TrimSpace(t.Merchant)),
		t.CardID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
