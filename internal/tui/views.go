package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/vaultswipe/internal/cli"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	summary := m.session.Engine.Summary(m.session.Engine.Today())

	sections := []string{
		m.renderHeader(summary),
		m.renderBalances(summary),
		m.renderCards(summary),
		m.renderTransactions(),
		m.renderStatus(),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(s ledger.Summary) string {
	title := m.theme.Title.Render(cli.VaultIcon + " VaultSwipe")
	date := m.theme.Subtitle.Render(cli.FormatDate(s.Date))
	if m.Dirty() {
		date += m.theme.Muted.Render("  (unsaved)")
	}
	return title + "  " + date
}

func (m Model) renderBalances(s ledger.Summary) string {
	diffStyle := m.theme.Amount
	if s.Difference.IsPositive() {
		diffStyle = m.theme.Negative
	}

	lines := []string{
		fmt.Sprintf("Checking %s   Vault %s",
			m.theme.Amount.Render(cli.FormatMoney(s.Checking)),
			m.theme.Amount.Render(cli.FormatMoney(s.Vault))),
		fmt.Sprintf("Pending  %s   Still to vault %s",
			m.theme.Amount.Render(cli.FormatMoney(s.TotalPending)),
			diffStyle.Render(cli.FormatMoney(s.Difference))),
		fmt.Sprintf("Coverage %s %3.0f%%", m.coverage.ViewAs(s.VaultCoverage), s.VaultCoverage*100),
	}
	return m.theme.RoundedBox.Render(strings.Join(lines, "\n"))
}

func (m Model) renderCards(s ledger.Summary) string {
	if len(s.Cards) == 0 {
		return m.theme.Muted.Render("No cards yet. Add one with `vaultswipe card add`.")
	}

	var b strings.Builder
	for i, cs := range s.Cards {
		due := fmt.Sprintf("due the %s, %s", cs.OrdinalDueDay, cli.FormatDays(cs.DaysUntilDue))
		dueStyle := m.theme.Muted
		if cs.DueSoon {
			dueStyle = m.theme.DueSoon
			due = cli.BellIcon + " " + due
		}

		name := cs.Card.Name
		if i == m.cardIndex {
			name = m.theme.Selected.Render(" " + name + " ")
		} else {
			name = m.theme.Normal.Render(" " + name + " ")
		}

		fmt.Fprintf(&b, "%s %s %s  %s\n",
			lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Card.Color)).Render("■"),
			name,
			m.theme.Amount.Render(cli.FormatMoney(cs.Pending)),
			dueStyle.Render(due))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTransactions() string {
	card, ok := m.selectedCard()
	if !ok {
		return ""
	}

	txns := m.cardTransactions()
	header := m.theme.Bold.Render(fmt.Sprintf("%s %s purchases", cli.CardIcon, card.Name))
	if len(txns) == 0 {
		return header + "\n" + m.theme.Muted.Render("  nothing recorded")
	}

	rows := []string{header}
	for i, t := range txns {
		mark := "[ ]"
		if t.Cleared {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s  %-24s %10s", mark, cli.FormatDate(t.Date), truncate(t.Merchant, 24), cli.FormatMoney(t.Amount))
		if t.Note != "" {
			line += "  " + truncate(t.Note, 30)
		}

		switch {
		case i == m.txnIndex:
			line = m.theme.Selected.Render(line)
		case t.Cleared:
			line = m.theme.Cleared.Render(line)
		default:
			line = m.theme.Normal.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderStatus() string {
	if m.status.text == "" {
		return ""
	}
	switch m.status.kind {
	case statusError:
		return m.theme.StatusError.Render(cli.ErrorIcon + " " + m.status.text)
	case statusSuccess:
		return m.theme.StatusSuccess.Render(cli.SuccessIcon + " " + m.status.text)
	default:
		return m.theme.StatusInfo.Render(m.status.text)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
