package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/vaultswipe/internal/service"
	"github.com/mattn/go-sqlite3"
)

// checkpointIDLayout names checkpoints created without an explicit tag.
const checkpointIDLayout = "2006-01-02-150405"

// CreateCheckpoint stores a copy of a snapshot payload.
func (s *SQLiteStorage) CreateCheckpoint(ctx context.Context, cp *service.Checkpoint) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if cp == nil {
		return fmt.Errorf("%w: checkpoint", ErrNilParameter)
	}
	if err := validateKey(cp.StateKey); err != nil {
		return err
	}
	if err := validatePayload(cp.Payload); err != nil {
		return err
	}

	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("checkpoint-%s", cp.CreatedAt.Format(checkpointIDLayout))
	}
	if err := validateTag(cp.ID); err != nil {
		return err
	}
	cp.Size = len(cp.Payload)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (id, state_key, payload, description, is_auto, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cp.ID, cp.StateKey, cp.Payload, cp.Description, cp.IsAuto, cp.CreatedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", service.ErrCheckpointExists, cp.ID)
		}
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	slog.Debug("Created checkpoint", "id", cp.ID, "key", cp.StateKey, "auto", cp.IsAuto)
	return nil
}

// ListCheckpoints returns the checkpoints of a state key, newest first.
func (s *SQLiteStorage) ListCheckpoints(ctx context.Context, stateKey string) ([]service.Checkpoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKey(stateKey); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, state_key, description, is_auto, created_at, length(payload)
		FROM checkpoints
		WHERE state_key = ?
		ORDER BY created_at DESC, id DESC
	`, stateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Error("failed to close rows", "error", closeErr)
		}
	}()

	var checkpoints []service.Checkpoint
	for rows.Next() {
		var cp service.Checkpoint
		var description sql.NullString
		if err := rows.Scan(&cp.ID, &cp.StateKey, &description, &cp.IsAuto, &cp.CreatedAt, &cp.Size); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		cp.Description = description.String
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkpoints: %w", err)
	}
	return checkpoints, nil
}

// GetCheckpoint returns a checkpoint including its payload.
func (s *SQLiteStorage) GetCheckpoint(ctx context.Context, id string) (*service.Checkpoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var cp service.Checkpoint
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, state_key, payload, description, is_auto, created_at
		FROM checkpoints
		WHERE id = ?
	`, id).Scan(&cp.ID, &cp.StateKey, &cp.Payload, &description, &cp.IsAuto, &cp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", service.ErrCheckpointNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	cp.Description = description.String
	cp.Size = len(cp.Payload)
	return &cp, nil
}

// DeleteCheckpoint removes a checkpoint.
func (s *SQLiteStorage) DeleteCheckpoint(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", service.ErrCheckpointNotFound, id)
	}
	return nil
}
