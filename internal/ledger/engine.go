package ledger

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
)

// Engine owns a ledger snapshot and applies commands to it. Every command
// works on a copy and swaps it in only on success, so a rejected command
// leaves the ledger untouched. An Engine is not safe for concurrent use.
type Engine struct {
	now       func() time.Time
	newID     func(prefix string) string
	pickIndex func(n int) int
	state     model.State
	cfg       Config
}

// NewEngine creates an engine over an empty ledger.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg.normalize(),
		now:       time.Now,
		newID:     defaultID,
		pickIndex: rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the ledger with a copy of s.
func (e *Engine) Load(s model.State) {
	e.state = s.Clone()
}

// State returns a copy of the current ledger.
func (e *Engine) State() model.State {
	return e.state.Clone()
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Today returns the current calendar date according to the engine clock.
func (e *Engine) Today() civil.Date {
	return civil.DateOf(e.now())
}

func (e *Engine) commit(next model.State) {
	e.state = next
}

func (e *Engine) pickColor() string {
	return e.cfg.Palette[e.pickIndex(len(e.cfg.Palette))]
}

// NewCard describes a card to add. Zero values take defaults: a palette color
// and the configured due day.
type NewCard struct {
	CurrentBalance *decimal.Decimal
	DueDay         *float64
	Name           string
	Color          string
}

// AddCard appends a new card. The name is trimmed and must not be empty.
func (e *Engine) AddCard(in NewCard) (model.Card, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Card{}, ErrEmptyName
	}
	due := e.cfg.DefaultDueDay
	if in.DueDay != nil {
		if math.IsNaN(*in.DueDay) {
			return model.Card{}, ErrInvalidDueDay
		}
		due = SanitizeDueDay(*in.DueDay)
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = e.pickColor()
	}

	card := model.Card{
		ID:     e.newID("c"),
		Name:   name,
		Color:  color,
		DueDay: due,
	}
	if in.CurrentBalance != nil {
		b := in.CurrentBalance.Round(2)
		card.CurrentBalance = &b
	}

	next := e.state.Clone()
	next.Cards = append(next.Cards, card)
	e.commit(next)

	slog.Debug("Added card", "id", card.ID, "name", card.Name, "due_day", card.DueDay)
	return card, nil
}

func (e *Engine) updateCard(id string, fn func(*model.Card) error) (model.Card, error) {
	next := e.state.Clone()
	i := next.FindCard(id)
	if i < 0 {
		return model.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	if err := fn(&next.Cards[i]); err != nil {
		return model.Card{}, err
	}
	e.commit(next)
	return next.Clone().Cards[i], nil
}

// RenameCard sets a card's display name.
func (e *Engine) RenameCard(id, name string) (model.Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Card{}, ErrEmptyName
	}
	return e.updateCard(id, func(c *model.Card) error {
		c.Name = name
		return nil
	})
}

// RecolorCard sets a card's color. An empty color picks one from the palette.
func (e *Engine) RecolorCard(id, color string) (model.Card, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		color = e.pickColor()
	}
	return e.updateCard(id, func(c *model.Card) error {
		c.Color = color
		return nil
	})
}

// ChangeDueDay sets a card's due day, rounding and clamping it into [1,31].
// NaN is rejected with ErrInvalidDueDay.
func (e *Engine) ChangeDueDay(id string, day float64) (model.Card, error) {
	if math.IsNaN(day) {
		return model.Card{}, ErrInvalidDueDay
	}
	due := SanitizeDueDay(day)
	return e.updateCard(id, func(c *model.Card) error {
		c.DueDay = due
		return nil
	})
}

// ChangeDueDayText parses raw as a number and applies ChangeDueDay. Input that
// is not a number is rejected with ErrInvalidDueDay.
func (e *Engine) ChangeDueDayText(id, raw string) (model.Card, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return model.Card{}, fmt.Errorf("%w: %q", ErrInvalidDueDay, raw)
	}
	return e.ChangeDueDay(id, v)
}

// SetCardCurrentBalance sets or, with nil, clears a card's stated balance.
func (e *Engine) SetCardCurrentBalance(id string, balance *decimal.Decimal) (model.Card, error) {
	return e.updateCard(id, func(c *model.Card) error {
		if balance == nil {
			c.CurrentBalance = nil
			return nil
		}
		b := balance.Round(2)
		c.CurrentBalance = &b
		return nil
	})
}

// DeleteCard removes a card and every transaction charged to it. It returns
// the number of transactions removed.
func (e *Engine) DeleteCard(id string) (int, error) {
	i := e.state.FindCard(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}

	next := e.state.Clone()
	next.Cards = append(next.Cards[:i], next.Cards[i+1:]...)
	kept := next.Transactions[:0]
	removed := 0
	for _, t := range next.Transactions {
		if t.CardID == id {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	next.Transactions = kept
	e.commit(next)

	slog.Debug("Deleted card", "id", id, "transactions_removed", removed)
	return removed, nil
}

// NewTransaction describes a purchase to record. A zero Date means today.
type NewTransaction struct {
	Date     civil.Date
	Amount   decimal.Decimal
	CardID   string
	Merchant string
	Note     string
}

func (e *Engine) buildTransaction(in NewTransaction) (model.Transaction, error) {
	if e.state.FindCard(in.CardID) < 0 {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrCardNotFound, in.CardID)
	}
	if !in.Amount.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: got %s", ErrInvalidAmount, in.Amount.String())
	}
	date := in.Date
	if date == (civil.Date{}) {
		date = e.Today()
	} else if !date.IsValid() {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	return model.Transaction{
		ID:       e.newID("t"),
		CardID:   in.CardID,
		Date:     date,
		Merchant: strings.TrimSpace(in.Merchant),
		Amount:   in.Amount,
		Note:     strings.TrimSpace(in.Note),
	}, nil
}

// AddTransaction records a pending purchase on an existing card.
func (e *Engine) AddTransaction(in NewTransaction) (model.Transaction, error) {
	txn, err := e.buildTransaction(in)
	if err != nil {
		return model.Transaction{}, err
	}
	next := e.state.Clone()
	next.Transactions = append(next.Transactions, txn)
	e.commit(next)

	slog.Debug("Added transaction", "id", txn.ID, "card_id", txn.CardID, "amount", txn.Amount.String())
	return txn, nil
}

func (e *Engine) updateTransaction(id string, fn func(*model.Transaction)) (model.Transaction, error) {
	next := e.state.Clone()
	i := next.FindTransaction(id)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	fn(&next.Transactions[i])
	e.commit(next)
	return next.Transactions[i], nil
}

// ToggleCleared flips a transaction between pending and cleared.
func (e *Engine) ToggleCleared(id string) (model.Transaction, error) {
	return e.updateTransaction(id, func(t *model.Transaction) {
		t.Cleared = !t.Cleared
	})
}

// UpdateNote replaces a transaction's note.
func (e *Engine) UpdateNote(id, note string) (model.Transaction, error) {
	return e.updateTransaction(id, func(t *model.Transaction) {
		t.Note = note
	})
}

// SetCheckingBalance overwrites the checking balance.
func (e *Engine) SetCheckingBalance(v decimal.Decimal) model.Balances {
	next := e.state.Clone()
	next.Checking = v.Round(2)
	e.commit(next)
	return next.Balances
}

// SetVaultBalance overwrites the vault balance.
func (e *Engine) SetVaultBalance(v decimal.Decimal) model.Balances {
	next := e.state.Clone()
	next.Vault = v.Round(2)
	e.commit(next)
	return next.Balances
}

func (e *Engine) applyTransfer(dir model.TransferDirection, amount decimal.Decimal, mode model.TransferMode) (model.Balances, error) {
	b, err := Transfer(e.state.Balances, dir, amount, mode)
	if err != nil {
		return e.state.Balances, err
	}
	next := e.state.Clone()
	next.Balances = b
	e.commit(next)

	slog.Debug("Transferred funds", "direction", dir, "amount", amount.String(), "mode", mode)
	return b, nil
}

// Transfer moves funds using the configured transfer mode.
func (e *Engine) Transfer(dir model.TransferDirection, amount decimal.Decimal) (model.Balances, error) {
	return e.applyTransfer(dir, amount, e.cfg.TransferMode)
}

// TransferStrict moves funds, rejecting amounts above the source balance.
func (e *Engine) TransferStrict(dir model.TransferDirection, amount decimal.Decimal) (model.Balances, error) {
	return e.applyTransfer(dir, amount, model.TransferStrict)
}

// TransferUnchecked moves funds even when the source goes negative.
func (e *Engine) TransferUnchecked(dir model.TransferDirection, amount decimal.Decimal) (model.Balances, error) {
	return e.applyTransfer(dir, amount, model.TransferUnchecked)
}

// VaultTransactionAmount moves amount from checking into the vault without
// checking available funds.
func (e *Engine) VaultTransactionAmount(amount decimal.Decimal) (model.Balances, error) {
	return e.applyTransfer(model.CheckingToVault, amount, model.TransferUnchecked)
}

// VaultTransaction moves a transaction's amount into the vault and, when
// clear is set, marks the transaction cleared in the same step.
func (e *Engine) VaultTransaction(txnID string, clear bool) (model.Transaction, model.Balances, error) {
	i := e.state.FindTransaction(txnID)
	if i < 0 {
		return model.Transaction{}, e.state.Balances, fmt.Errorf("%w: %s", ErrTransactionNotFound, txnID)
	}
	txn := e.state.Transactions[i]
	b, err := VaultTransactionAmount(e.state.Balances, txn.Amount)
	if err != nil {
		return txn, e.state.Balances, err
	}

	next := e.state.Clone()
	next.Balances = b
	if clear {
		next.Transactions[i].Cleared = true
	}
	e.commit(next)
	return next.Transactions[i], b, nil
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Added      []model.Transaction
	Duplicates int
}

// ImportTransactions adds a batch of purchases to one card. Rows matching an
// existing transaction of that card (or an earlier row of the batch) by
// date, merchant and amount are skipped. Any invalid row rejects the batch.
func (e *Engine) ImportTransactions(cardID string, rows []NewTransaction) (ImportResult, error) {
	if e.state.FindCard(cardID) < 0 {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}

	seen := make(map[string]bool)
	for _, t := range e.state.TransactionsForCard(cardID) {
		seen[t.GenerateHash()] = true
	}

	var result ImportResult
	for n, row := range rows {
		row.CardID = cardID
		txn, err := e.buildTransaction(row)
		if err != nil {
			return ImportResult{}, fmt.Errorf("row %d: %w", n+1, err)
		}
		hash := txn.GenerateHash()
		if seen[hash] {
			result.Duplicates++
			continue
		}
		seen[hash] = true
		result.Added = append(result.Added, txn)
	}

	next := e.state.Clone()
	next.Transactions = append(next.Transactions, result.Added...)
	e.commit(next)

	slog.Info("Imported transactions",
		"card_id", cardID, "added", len(result.Added), "duplicates", result.Duplicates)
	return result, nil
}

// AggregationMode returns the mode used for card exposure totals.
func (e *Engine) AggregationMode() model.AggregationMode {
	if e.cfg.Aggregation == AggregationAuto {
		return DetectAggregationMode(e.state.Cards)
	}
	return e.cfg.Aggregation
}

// PendingByCard totals pending purchases per card.
func (e *Engine) PendingByCard() map[string]decimal.Decimal {
	return PendingByCard(e.state.Cards, e.state.Transactions)
}

// TotalPending sums pending purchases across cards.
func (e *Engine) TotalPending() decimal.Decimal {
	return TotalPending(e.PendingByCard())
}

// TotalCardBalances totals card exposure in the engine's aggregation mode.
func (e *Engine) TotalCardBalances() decimal.Decimal {
	return TotalCardBalances(e.state.Cards, e.state.Transactions, e.AggregationMode())
}

// PendingDifference is the amount still to be moved into the vault.
func (e *Engine) PendingDifference() decimal.Decimal {
	return PendingDifference(e.TotalCardBalances(), e.state.Vault)
}

// DaysUntilDue returns the days until the card's next due date.
func (e *Engine) DaysUntilDue(cardID string, today civil.Date) (int, error) {
	i := e.state.FindCard(cardID)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	return DaysUntilNextDue(e.state.Cards[i].DueDay, today), nil
}
