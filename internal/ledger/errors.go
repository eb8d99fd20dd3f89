// Package ledger implements the VaultSwipe ledger engine: pending aggregation,
// due-date computation, balance reconciliation and the commands that mutate a
// ledger snapshot.
package ledger

import "errors"

// Command errors. A command that returns one of these leaves the ledger unchanged.
var (
	ErrCardNotFound        = errors.New("card not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrEmptyName           = errors.New("card name cannot be empty")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrInvalidDueDay       = errors.New("due day must be a number")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidDirection    = errors.New("invalid transfer direction")
	ErrLedgerNotEmpty      = errors.New("ledger already has cards")
)
