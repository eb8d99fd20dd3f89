package model

import "github.com/shopspring/decimal"

// Balances holds the two manually maintained account balances.
type Balances struct {
	Checking decimal.Decimal
	Vault    decimal.Decimal
}

// Get returns the balance of the named account.
func (b Balances) Get(a Account) decimal.Decimal {
	if a == AccountVault {
		return b.Vault
	}
	return b.Checking
}

// With returns a copy of b with the named account set to v.
func (b Balances) With(a Account, v decimal.Decimal) Balances {
	if a == AccountVault {
		b.Vault = v
	} else {
		b.Checking = v
	}
	return b
}

// State is a complete ledger snapshot: balances, cards and transactions.
type State struct {
	Cards        []Card
	Transactions []Transaction
	Balances
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Balances: s.Balances}
	if s.Cards != nil {
		out.Cards = make([]Card, len(s.Cards))
		for i, c := range s.Cards {
			out.Cards[i] = c.Clone()
		}
	}
	if s.Transactions != nil {
		out.Transactions = make([]Transaction, len(s.Transactions))
		copy(out.Transactions, s.Transactions)
	}
	return out
}

// FindCard returns the index of the card with the given ID, or -1.
func (s State) FindCard(id string) int {
	for i, c := range s.Cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// FindTransaction returns the index of the transaction with the given ID, or -1.
func (s State) FindTransaction(id string) int {
	for i, t := range s.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// TransactionsForCard returns the transactions charged to the given card.
func (s State) TransactionsForCard(cardID string) []Transaction {
	var out []Transaction
	for _, t := range s.Transactions {
		if t.CardID == cardID {
			out = append(out, t)
		}
	}
	return out
}
