package model

import (
	"fmt"
	"strings"
)

// Account names one of the two manual balances.
type Account string

const (
	// AccountChecking is the main checking account.
	AccountChecking Account = "checking"
	// AccountVault holds funds earmarked for card payoff.
	AccountVault Account = "vault"
)

// TransferDirection selects which balance a transfer draws from.
type TransferDirection string

const (
	// CheckingToVault moves money from checking into the vault.
	CheckingToVault TransferDirection = "checking-to-vault"
	// VaultToChecking moves money from the vault back to checking.
	VaultToChecking TransferDirection = "vault-to-checking"
)

// Source returns the account debited by the transfer.
func (d TransferDirection) Source() Account {
	if d == VaultToChecking {
		return AccountVault
	}
	return AccountChecking
}

// Destination returns the account credited by the transfer.
func (d TransferDirection) Destination() Account {
	if d == VaultToChecking {
		return AccountChecking
	}
	return AccountVault
}

// Invert swaps the direction.
func (d TransferDirection) Invert() TransferDirection {
	if d == VaultToChecking {
		return CheckingToVault
	}
	return VaultToChecking
}

// IsValid reports whether d is a known direction.
func (d TransferDirection) IsValid() bool {
	return d == CheckingToVault || d == VaultToChecking
}

// ParseTransferDirection accepts the canonical names plus the short
// destination forms "vault" / "to-vault" and "checking" / "to-checking".
func ParseTransferDirection(s string) (TransferDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(CheckingToVault), "to-vault", "vault":
		return CheckingToVault, nil
	case string(VaultToChecking), "to-checking", "checking":
		return VaultToChecking, nil
	default:
		return "", fmt.Errorf("unknown transfer direction %q", s)
	}
}

// AggregationMode selects how total card exposure is computed.
type AggregationMode string

const (
	// PendingSum totals uncleared transactions.
	PendingSum AggregationMode = "pending"
	// StatedBalances totals the manually entered card balances.
	StatedBalances AggregationMode = "stated"
)

// TransferMode selects whether a transfer checks the source balance.
type TransferMode string

const (
	// TransferStrict rejects transfers larger than the source balance.
	TransferStrict TransferMode = "strict"
	// TransferUnchecked applies the transfer regardless of the source balance.
	TransferUnchecked TransferMode = "unchecked"
)
