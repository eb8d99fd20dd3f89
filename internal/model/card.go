// Package model defines the domain entities tracked by the ledger.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors.
var (
	ErrInvalidCard        = errors.New("invalid card")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// MinDueDay and MaxDueDay bound a card's due day of month.
const (
	MinDueDay = 1
	MaxDueDay = 31
)

// Card is a credit card whose purchases are tracked until the matching
// amount has been moved out of checking.
type Card struct {
	// CurrentBalance is a manually entered statement balance. Nil means unset.
	CurrentBalance *decimal.Decimal
	ID             string
	Name           string
	Color          string
	DueDay         int
}

// HasCurrentBalance reports whether a stated balance has been entered.
func (c Card) HasCurrentBalance() bool {
	return c.CurrentBalance != nil
}

// Validate ensures the card can be stored.
func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCard)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCard)
	}
	if c.DueDay < MinDueDay || c.DueDay > MaxDueDay {
		return fmt.Errorf("%w: due day %d out of range", ErrInvalidCard, c.DueDay)
	}
	return nil
}

// Clone returns a copy of c that shares no memory with it.
func (c Card) Clone() Card {
	if c.CurrentBalance != nil {
		b := *c.CurrentBalance
		c.CurrentBalance = &b
	}
	return c
}
