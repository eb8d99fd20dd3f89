package ledger

import (
	"fmt"

	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
)

// PendingDifference is the amount still owed to the vault: card exposure minus
// vaulted funds, floored at zero.
func PendingDifference(totalCardBalances, vault decimal.Decimal) decimal.Decimal {
	diff := totalCardBalances.Sub(vault)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

// Transfer moves amount between checking and the vault. The amount is rounded
// to cents first, so both sides move by exactly the same value. In strict mode
// a source balance below amount is rejected with ErrInsufficientFunds. Both
// resulting balances are rounded to cents. b is never modified.
func Transfer(b model.Balances, dir model.TransferDirection, amount decimal.Decimal, mode model.TransferMode) (model.Balances, error) {
	if !dir.IsValid() {
		return b, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	requested := amount
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return b, fmt.Errorf("%w: got %s", ErrInvalidAmount, requested.String())
	}

	src, dst := dir.Source(), dir.Destination()
	from := b.Get(src)
	if mode != model.TransferUnchecked && from.LessThan(amount) {
		return b, fmt.Errorf("%w: %s has %s, need %s",
			ErrInsufficientFunds, src, from.StringFixed(2), amount.StringFixed(2))
	}

	out := b.With(src, from.Sub(amount).Round(2))
	out = out.With(dst, b.Get(dst).Add(amount).Round(2))
	return out, nil
}

// TransferStrict is Transfer in strict mode.
func TransferStrict(b model.Balances, dir model.TransferDirection, amount decimal.Decimal) (model.Balances, error) {
	return Transfer(b, dir, amount, model.TransferStrict)
}

// TransferUnchecked is Transfer without the sufficient-funds check.
func TransferUnchecked(b model.Balances, dir model.TransferDirection, amount decimal.Decimal) (model.Balances, error) {
	return Transfer(b, dir, amount, model.TransferUnchecked)
}

// VaultTransactionAmount moves a purchase amount from checking into the vault
// without checking available funds.
func VaultTransactionAmount(b model.Balances, amount decimal.Decimal) (model.Balances, error) {
	return TransferUnchecked(b, model.CheckingToVault, amount)
}
