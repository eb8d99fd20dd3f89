package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/service"
	"github.com/mattn/go-sqlite3"
)

// LoadState returns the payload saved under key.
func (s *SQLiteStorage) LoadState(ctx context.Context, key string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM ledger_state WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	return payload, nil
}

// SaveState replaces the payload saved under key.
func (s *SQLiteStorage) SaveState(ctx context.Context, key string, payload []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if err := validatePayload(payload); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_state (key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, key, payload)
	if err != nil {
		if isBusy(err) {
			return fmt.Errorf("%w: %w", common.ErrStoreBusy, err)
		}
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}

// isBusy reports whether err is SQLite refusing a write under contention.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}
