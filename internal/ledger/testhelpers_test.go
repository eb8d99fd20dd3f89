package ledger

import (
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

// newTestEngine returns an engine with a fixed clock, sequential IDs and a
// color picker that always takes the first palette entry.
func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	seq := 0
	return NewEngine(cfg,
		WithClock(func() time.Time { return time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local) }),
		WithIDGenerator(func(prefix string) string {
			seq++
			return fmt.Sprintf("%s%d", prefix, seq)
		}),
		WithColorPicker(func(int) int { return 0 }),
	)
}

func mustAddCard(t *testing.T, e *Engine, name string) model.Card {
	t.Helper()
	c, err := e.AddCard(NewCard{Name: name})
	require.NoError(t, err)
	return c
}

func mustAddTxn(t *testing.T, e *Engine, cardID, amount string) model.Transaction {
	t.Helper()
	txn, err := e.AddTransaction(NewTransaction{CardID: cardID, Merchant: "Shop", Amount: dec(amount)})
	require.NoError(t, err)
	return txn
}

func ptr[T any](v T) *T {
	return &v
}

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}
