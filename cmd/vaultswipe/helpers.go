package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/config"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/Veraticus/vaultswipe/internal/service"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/Veraticus/vaultswipe/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// errAborted ends a command the user declined to confirm. Nothing is saved.
var errAborted = errors.New("aborted")

// openStore initializes the configured storage backend.
func (a *app) openStore(ctx context.Context) (service.StateStore, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendFile:
		store, err := storage.NewFileStorage(a.cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := storage.NewSQLiteStorage(a.cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil
	}
}

func (a *app) openSession(ctx context.Context) (*session.Session, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(ctx, store, a.cfg.Storage.Key, a.cfg.Ledger,
		session.WithAutoCheckpoint(a.cfg.Storage.AutoCheckpoint))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return sess, nil
}

// withSession opens the ledger, runs fn and, when save is set, writes the
// ledger back. Nothing is written if fn fails.
func (a *app) withSession(cmd *cobra.Command, save bool, fn func(ctx context.Context, sess *session.Session) error) error {
	ctx := cmd.Context()
	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("Failed to close storage", "error", closeErr)
		}
	}()

	if err := fn(ctx, sess); err != nil {
		if errors.Is(err, errAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		return err
	}
	if save {
		return sess.Save(ctx)
	}
	return nil
}

// resolveCard finds a card by ID or, failing that, by case-insensitive name.
func resolveCard(e *ledger.Engine, ref string) (model.Card, error) {
	ref = strings.TrimSpace(ref)
	cards := e.State().Cards
	for _, c := range cards {
		if c.ID == ref {
			return c, nil
		}
	}

	var matches []model.Card
	for _, c := range cards {
		if strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return model.Card{}, fmt.Errorf("%w: %s", ledger.ErrCardNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Card{}, fmt.Errorf("%d cards are named %q, use the card ID instead", len(matches), ref)
	}
}

// parseMoney reads an amount such as "1,234.56" or "$40".
func parseMoney(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return d, nil
}

// parseDateFlag returns fallback when raw is empty.
func parseDateFlag(raw string, fallback civil.Date) (civil.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := civil.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ledger.ErrInvalidDate, raw)
	}
	return d, nil
}

// parseDueDayArg reads a day of month typed on the command line. Fractions are
// rounded and out-of-range days clamped; anything that is not a number is
// rejected.
func parseDueDayArg(raw string) (int, error) {
	v, err := parseDueDayValue(raw)
	if err != nil {
		return 0, err
	}
	return ledger.SanitizeDueDay(v), nil
}

func parseDueDayValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ledger.ErrInvalidDueDay, raw)
	}
	return v, nil
}
