package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/vaultswipe/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard until the user quits. It reports whether unsaved
// changes were discarded.
func Run(ctx context.Context, sess *session.Session, opts ...Option) (bool, error) {
	if sess == nil {
		return false, errors.New("session is required")
	}

	program := tea.NewProgram(
		New(ctx, sess, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return false, fmt.Errorf("dashboard failed: %w", err)
	}

	if m, ok := final.(Model); ok && m.Dirty() {
		slog.Warn("Dashboard closed with unsaved changes", "key", sess.Key())
		return true, nil
	}
	return false, nil
}
