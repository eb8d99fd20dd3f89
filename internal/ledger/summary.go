package ledger

import (
	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
)

// CardSummary is the per-card view of the ledger on a given day.
type CardSummary struct {
	NextDue       civil.Date
	Pending       decimal.Decimal
	OrdinalDueDay string
	Card          model.Card
	PendingCount  int
	ClearedCount  int
	DaysUntilDue  int
	DueSoon       bool
}

// Summary is a read-only overview of the ledger on a given day.
type Summary struct {
	Date              civil.Date
	TotalPending      decimal.Decimal
	TotalCardBalances decimal.Decimal
	Difference        decimal.Decimal
	Mode              model.AggregationMode
	Cards             []CardSummary
	model.Balances
	VaultCoverage float64
	ShowReminder  bool
}

// Summary computes the ledger overview as of today.
func (e *Engine) Summary(today civil.Date) Summary {
	byCard := e.PendingByCard()
	mode := e.AggregationMode()
	total := TotalCardBalances(e.state.Cards, e.state.Transactions, mode)

	s := Summary{
		Date:              today,
		Mode:              mode,
		Balances:          e.state.Balances,
		TotalPending:      TotalPending(byCard),
		TotalCardBalances: total,
		Difference:        PendingDifference(total, e.state.Vault),
		VaultCoverage:     coverage(e.state.Vault, total),
	}
	s.ShowReminder = s.TotalPending.IsPositive()

	for _, c := range e.state.Cards {
		days := DaysUntilNextDue(c.DueDay, today)
		cs := CardSummary{
			Card:          c.Clone(),
			Pending:       byCard[c.ID],
			NextDue:       NextDueDate(c.DueDay, today),
			DaysUntilDue:  days,
			DueSoon:       DueSoon(days, e.cfg.DueSoonDays),
			OrdinalDueDay: OrdinalSuffix(c.DueDay),
		}
		for _, t := range e.state.Transactions {
			if t.CardID != c.ID {
				continue
			}
			if t.Pending() {
				cs.PendingCount++
			} else {
				cs.ClearedCount++
			}
		}
		s.Cards = append(s.Cards, cs)
	}
	return s
}

// coverage is vault / total clamped into [0,1]. With nothing owed the vault
// covers everything.
func coverage(vault, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 1
	}
	ratio := vault.Div(total).InexactFloat64()
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	default:
		return ratio
	}
}
