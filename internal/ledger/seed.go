package ledger

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
)

// Seed loads a small sample ledger: two cards and three pending purchases.
// It refuses to run when the ledger already has cards.
func (e *Engine) Seed() (model.State, error) {
	if len(e.state.Cards) > 0 {
		return e.State(), ErrLedgerNotEmpty
	}

	cashBack := model.Card{ID: e.newID("c"), Name: "Wells Fargo Cash Back", Color: "#0F766E", DueDay: e.cfg.DefaultDueDay}
	mileage := model.Card{ID: e.newID("c"), Name: "United Mileage Plus", Color: "#1D4ED8", DueDay: e.cfg.DefaultDueDay}

	txn := func(card model.Card, day int, merchant, amount, note string) model.Transaction {
		return model.Transaction{
			ID:       e.newID("t"),
			CardID:   card.ID,
			Date:     civil.Date{Year: 2025, Month: time.July, Day: day},
			Merchant: merchant,
			Amount:   decimal.RequireFromString(amount),
			Note:     note,
		}
	}

	next := e.state.Clone()
	next.Cards = append(next.Cards, cashBack, mileage)
	next.Transactions = append(next.Transactions,
		txn(cashBack, 30, "Starbucks", "12.57", ""),
		txn(cashBack, 29, "Amazon", "40.00", "Waiting for refund"),
		txn(mileage, 28, "Lyft", "18.40", ""),
	)
	e.commit(next)
	return e.State(), nil
}
