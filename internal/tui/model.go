// Package tui implements the interactive ledger dashboard.
package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/Veraticus/vaultswipe/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the dashboard state. Ledger data lives in the session engine;
// the model only tracks selection and UI state.
type Model struct {
	ctx       context.Context
	session   *session.Session
	status    status
	theme     themes.Theme
	keymap    KeyMap
	help      help.Model
	coverage  progress.Model
	cardIndex int
	txnIndex  int
	width     int
	height    int
	// revision counts edits; saved is the revision last written to the store.
	revision int
	saved    int
	quitting bool
}

// New creates a dashboard over an open session.
func New(ctx context.Context, sess *session.Session, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		ctx:     ctx,
		session: sess,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    h,
		coverage: progress.New(
			progress.WithGradient(cfg.Theme.CoverageStart, cfg.Theme.CoverageEnd),
			progress.WithoutPercentage(),
		),
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Dirty reports whether there are unsaved changes.
func (m Model) Dirty() bool {
	return m.revision != m.saved
}

func (m *Model) edited() {
	m.revision++
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.quitting = false
			m.setStatus(statusError, fmt.Sprintf("Save failed: %v", msg.err))
			return m, nil
		}
		if msg.revision > m.saved {
			m.saved = msg.revision
		}
		if m.Dirty() {
			// Edited while the save was in flight.
			if msg.quit {
				return m, m.saveCmd(true)
			}
			m.setStatus(statusInfo, "Saved, newer changes pending")
			return m, nil
		}
		m.setStatus(statusSuccess, "Saved")
		if msg.quit {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Quit):
		if !m.Dirty() {
			m.quitting = true
			return m, tea.Quit
		}
		m.quitting = true
		return m, m.saveCmd(true)

	case key.Matches(msg, m.keymap.Save):
		return m, m.saveCmd(false)

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.NextCard):
		m.selectCard(m.cardIndex + 1)

	case key.Matches(msg, m.keymap.PrevCard):
		m.selectCard(m.cardIndex - 1)

	case key.Matches(msg, m.keymap.Up):
		if m.txnIndex > 0 {
			m.txnIndex--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.txnIndex < len(m.cardTransactions())-1 {
			m.txnIndex++
		}

	case key.Matches(msg, m.keymap.Toggle):
		m.toggleSelected()

	case key.Matches(msg, m.keymap.Vault):
		m.vaultSelected()
	}
	return m, nil
}

// saveCmd encodes the ledger now, on the update goroutine, and writes the
// payload in the background.
func (m Model) saveCmd(quit bool) tea.Cmd {
	sess, ctx, revision := m.session, m.ctx, m.revision
	payload, err := sess.Export()
	if err != nil {
		return func() tea.Msg {
			return savedMsg{err: err, quit: quit, revision: revision}
		}
	}
	return func() tea.Msg {
		return savedMsg{err: sess.Write(ctx, payload), quit: quit, revision: revision}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	barWidth := width - 24
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	m.coverage.Width = barWidth
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.status = status{kind: kind, text: text}
}

// selectCard moves the card selection, wrapping around both ends.
func (m *Model) selectCard(i int) {
	n := len(m.session.Engine.State().Cards)
	if n == 0 {
		return
	}
	m.cardIndex = ((i % n) + n) % n
	m.txnIndex = 0
}

func (m Model) selectedCard() (model.Card, bool) {
	cards := m.session.Engine.State().Cards
	if len(cards) == 0 {
		return model.Card{}, false
	}
	i := m.cardIndex
	if i >= len(cards) {
		i = len(cards) - 1
	}
	return cards[i], true
}

// cardTransactions lists the selected card's purchases, pending first.
func (m Model) cardTransactions() []model.Transaction {
	card, ok := m.selectedCard()
	if !ok {
		return nil
	}
	txns := m.session.Engine.State().Transactions
	return append(ledger.PendingTransactions(txns, card.ID), ledger.ClearedTransactions(txns, card.ID)...)
}

func (m Model) selectedTransaction() (model.Transaction, bool) {
	txns := m.cardTransactions()
	if len(txns) == 0 {
		return model.Transaction{}, false
	}
	i := m.txnIndex
	if i >= len(txns) {
		i = len(txns) - 1
	}
	return txns[i], true
}

// followTransaction keeps the cursor on id after the list reorders.
func (m *Model) followTransaction(id string) {
	for i, t := range m.cardTransactions() {
		if t.ID == id {
			m.txnIndex = i
			return
		}
	}
}

func (m *Model) toggleSelected() {
	txn, ok := m.selectedTransaction()
	if !ok {
		return
	}
	updated, err := m.session.Engine.ToggleCleared(txn.ID)
	if err != nil {
		m.setStatus(statusError, err.Error())
		return
	}
	m.edited()
	m.followTransaction(updated.ID)
	if updated.Cleared {
		m.setStatus(statusInfo, fmt.Sprintf("Cleared %s", updated.Merchant))
	} else {
		m.setStatus(statusInfo, fmt.Sprintf("%s is pending again", updated.Merchant))
	}
}

func (m *Model) vaultSelected() {
	txn, ok := m.selectedTransaction()
	if !ok {
		return
	}
	if txn.Cleared {
		m.setStatus(statusError, fmt.Sprintf("%s is already cleared", txn.Merchant))
		return
	}
	updated, balances, err := m.session.Engine.VaultTransaction(txn.ID, true)
	if err != nil {
		m.setStatus(statusError, err.Error())
		return
	}
	m.edited()
	m.followTransaction(updated.ID)
	m.setStatus(statusSuccess, fmt.Sprintf("Vaulted %s for %s (vault %s)",
		cli.FormatMoney(updated.Amount), updated.Merchant, cli.FormatMoney(balances.Vault)))
}
