package ledger

import (
	"sort"

	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
)

// PendingByCard totals uncleared transaction amounts per card. Every card is
// present in the result, with zero when it has nothing pending. Transactions
// whose card is unknown are ignored.
func PendingByCard(cards []model.Card, txns []model.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(cards))
	for _, c := range cards {
		out[c.ID] = decimal.Zero
	}
	for _, t := range txns {
		if !t.Pending() {
			continue
		}
		cur, ok := out[t.CardID]
		if !ok {
			continue
		}
		out[t.CardID] = cur.Add(t.Amount)
	}
	return out
}

// TotalPending sums a per-card pending map.
func TotalPending(byCard map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range byCard {
		total = total.Add(v)
	}
	return total
}

// TotalCardBalances reports aggregate card exposure. StatedBalances sums the
// manually entered card balances, treating unset ones as zero; PendingSum
// totals uncleared transactions.
func TotalCardBalances(cards []model.Card, txns []model.Transaction, mode model.AggregationMode) decimal.Decimal {
	if mode == model.StatedBalances {
		total := decimal.Zero
		for _, c := range cards {
			if c.CurrentBalance != nil {
				total = total.Add(*c.CurrentBalance)
			}
		}
		return total
	}
	return TotalPending(PendingByCard(cards, txns))
}

// DetectAggregationMode returns StatedBalances when any card carries a stated
// balance, PendingSum otherwise.
func DetectAggregationMode(cards []model.Card) model.AggregationMode {
	for _, c := range cards {
		if c.HasCurrentBalance() {
			return model.StatedBalances
		}
	}
	return model.PendingSum
}

// PendingTransactions returns the card's uncleared transactions, newest first.
func PendingTransactions(txns []model.Transaction, cardID string) []model.Transaction {
	return filterSorted(txns, cardID, false)
}

// ClearedTransactions returns the card's cleared transactions, newest first.
func ClearedTransactions(txns []model.Transaction, cardID string) []model.Transaction {
	return filterSorted(txns, cardID, true)
}

func filterSorted(txns []model.Transaction, cardID string, cleared bool) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.CardID == cardID && t.Pending() != cleared {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
