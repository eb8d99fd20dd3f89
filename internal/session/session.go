// Package session ties a ledger engine to a state store: it loads and decodes
// the saved snapshot, and encodes and saves it again after commands run.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/service"
	"github.com/Veraticus/vaultswipe/internal/snapshot"
	"github.com/google/uuid"
)

// DefaultKey is the storage key the ledger is saved under.
const DefaultKey = "vaultswipe_mvp1"

// saveRetry retries saves that fail because the store is busy.
var saveRetry = common.RetryOptions{
	MaxAttempts:  5,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     time.Second,
}

// maxAutoCheckpoints is how many automatic checkpoints are kept per key.
const maxAutoCheckpoints = 5

// Session errors.
var (
	ErrCheckpointsUnsupported = errors.New("storage backend does not support checkpoints")
	ErrUnreadableImport       = errors.New("import file is not a readable ledger")
	ErrCheckpointKeyMismatch  = errors.New("checkpoint belongs to a different ledger")
)

// Session is an open ledger bound to a store and key.
type Session struct {
	Engine         *ledger.Engine
	store          service.StateStore
	key            string
	report         snapshot.Report
	fresh          bool
	autoCheckpoint bool
}

// Option configures a Session.
type Option func(*openOptions)

type openOptions struct {
	engineOpts     []ledger.Option
	autoCheckpoint bool
}

// WithAutoCheckpoint enables checkpoints before destructive commands.
func WithAutoCheckpoint(enabled bool) Option {
	return func(o *openOptions) {
		o.autoCheckpoint = enabled
	}
}

// WithEngineOptions passes options through to the ledger engine.
func WithEngineOptions(opts ...ledger.Option) Option {
	return func(o *openOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// Open loads the snapshot saved under key. A missing snapshot opens an empty
// ledger; an unreadable one opens an empty ledger and logs a warning.
func Open(ctx context.Context, store service.StateStore, key string, cfg ledger.Config, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, errors.New("session requires a state store")
	}
	if key == "" {
		key = DefaultKey
	}
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		Engine:         ledger.NewEngine(cfg, o.engineOpts...),
		store:          store,
		key:            key,
		autoCheckpoint: o.autoCheckpoint,
	}

	payload, err := store.LoadState(ctx, key)
	switch {
	case errors.Is(err, service.ErrStateNotFound):
		s.fresh = true
		slog.Debug("No saved ledger, starting empty", "key", key)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	state, report := snapshot.Decode(payload)
	s.report = report
	logReport(key, report)
	s.Engine.Load(state)
	return s, nil
}

func logReport(key string, report snapshot.Report) {
	if report.Corrupt {
		slog.Warn("Saved ledger is unreadable, starting from defaults", "key", key)
	}
	for _, w := range report.Warnings {
		slog.Warn("Repaired saved ledger", "key", key, "detail", w)
	}
}

// Key returns the storage key.
func (s *Session) Key() string {
	return s.key
}

// Fresh reports whether nothing was saved under the key when it was opened.
func (s *Session) Fresh() bool {
	return s.fresh
}

// Report returns what decoding the saved snapshot had to repair.
func (s *Session) Report() snapshot.Report {
	return s.report
}

// Save encodes the current ledger and writes it to the store.
func (s *Session) Save(ctx context.Context) error {
	payload, err := snapshot.Encode(s.Engine.State())
	if err != nil {
		return err
	}
	if err := s.Write(ctx, payload); err != nil {
		return err
	}
	s.fresh = false
	return nil
}

// Write stores a payload produced by Export. It does not touch the engine, so
// it may run on another goroutine while the engine keeps changing.
func (s *Session) Write(ctx context.Context, payload []byte) error {
	err := common.WithRetry(ctx, func() error {
		saveErr := s.store.SaveState(ctx, s.key, payload)
		if saveErr != nil && !common.IsRetryable(saveErr) {
			return &common.RetryableError{Err: saveErr, Retryable: false}
		}
		return saveErr
	}, saveRetry)
	if err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	slog.Debug("Saved ledger", "key", s.key, "bytes", len(payload))
	return nil
}

// Close closes the underlying store.
func (s *Session) Close() error {
	return s.store.Close()
}

// Export encodes the current ledger.
func (s *Session) Export() ([]byte, error) {
	return snapshot.Encode(s.Engine.State())
}

// Import replaces the ledger with a decoded document. A document that is not
// a ledger at all is rejected rather than wiping the current one.
func (s *Session) Import(ctx context.Context, data []byte) (snapshot.Report, error) {
	state, report := snapshot.Decode(data)
	if report.Corrupt {
		return report, ErrUnreadableImport
	}
	if err := s.AutoCheckpoint(ctx, "import"); err != nil {
		return report, err
	}
	logReport(s.key, report)
	s.Engine.Load(state)
	return report, nil
}

// DeleteCard checkpoints the ledger when enabled, then deletes the card and
// its transactions.
func (s *Session) DeleteCard(ctx context.Context, cardID string) (int, error) {
	if s.Engine.State().FindCard(cardID) < 0 {
		return 0, fmt.Errorf("%w: %s", ledger.ErrCardNotFound, cardID)
	}
	if err := s.AutoCheckpoint(ctx, "delete-card"); err != nil {
		return 0, err
	}
	return s.Engine.DeleteCard(cardID)
}

func (s *Session) checkpoints() (service.CheckpointStore, error) {
	cs, ok := s.store.(service.CheckpointStore)
	if !ok {
		return nil, ErrCheckpointsUnsupported
	}
	return cs, nil
}

// Checkpoint stores the current ledger under tag. An empty tag is generated.
func (s *Session) Checkpoint(ctx context.Context, tag, description string) (*service.Checkpoint, error) {
	cs, err := s.checkpoints()
	if err != nil {
		return nil, err
	}
	return s.createCheckpoint(ctx, cs, tag, description, false)
}

func (s *Session) createCheckpoint(ctx context.Context, cs service.CheckpointStore, tag, description string, auto bool) (*service.Checkpoint, error) {
	payload, err := snapshot.Encode(s.Engine.State())
	if err != nil {
		return nil, err
	}
	cp := &service.Checkpoint{
		ID:          tag,
		StateKey:    s.key,
		Description: description,
		Payload:     payload,
		IsAuto:      auto,
	}
	if err := cs.CreateCheckpoint(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// AutoCheckpoint stores an automatic checkpoint before a destructive command.
// It does nothing when automatic checkpoints are disabled or the store does
// not support checkpoints. Only the most recent automatic checkpoints are kept.
func (s *Session) AutoCheckpoint(ctx context.Context, reason string) error {
	if !s.autoCheckpoint {
		return nil
	}
	cs, ok := s.store.(service.CheckpointStore)
	if !ok {
		return nil
	}

	tag := fmt.Sprintf("auto-%s-%s-%s", reason, time.Now().Format("2006-01-02-150405"), uuid.NewString()[:8])
	description := fmt.Sprintf("Automatic checkpoint before %s", reason)
	if _, err := s.createCheckpoint(ctx, cs, tag, description, true); err != nil {
		return fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := s.pruneAutoCheckpoints(ctx, cs); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}
	return nil
}

func (s *Session) pruneAutoCheckpoints(ctx context.Context, cs service.CheckpointStore) error {
	list, err := cs.ListCheckpoints(ctx, s.key)
	if err != nil {
		return err
	}
	autoCount := 0
	for _, cp := range list {
		if !cp.IsAuto {
			continue
		}
		autoCount++
		if autoCount > maxAutoCheckpoints {
			if err := cs.DeleteCheckpoint(ctx, cp.ID); err != nil {
				slog.Debug("failed to delete old auto-checkpoint during cleanup", "error", err, "checkpoint", cp.ID)
			}
		}
	}
	return nil
}

// ListCheckpoints returns this ledger's checkpoints, newest first.
func (s *Session) ListCheckpoints(ctx context.Context) ([]service.Checkpoint, error) {
	cs, err := s.checkpoints()
	if err != nil {
		return nil, err
	}
	return cs.ListCheckpoints(ctx, s.key)
}

// DeleteCheckpoint removes one of this ledger's checkpoints.
func (s *Session) DeleteCheckpoint(ctx context.Context, id string) error {
	cs, err := s.checkpoints()
	if err != nil {
		return err
	}
	cp, err := cs.GetCheckpoint(ctx, id)
	if err != nil {
		return err
	}
	if cp.StateKey != s.key {
		return fmt.Errorf("%w: %s", ErrCheckpointKeyMismatch, id)
	}
	return cs.DeleteCheckpoint(ctx, id)
}

// Restore replaces the ledger with a checkpoint's contents. The caller saves.
func (s *Session) Restore(ctx context.Context, id string) (snapshot.Report, error) {
	cs, err := s.checkpoints()
	if err != nil {
		return snapshot.Report{}, err
	}
	cp, err := cs.GetCheckpoint(ctx, id)
	if err != nil {
		return snapshot.Report{}, err
	}
	if cp.StateKey != s.key {
		return snapshot.Report{}, fmt.Errorf("%w: %s", ErrCheckpointKeyMismatch, id)
	}
	if err := s.AutoCheckpoint(ctx, "restore"); err != nil {
		return snapshot.Report{}, err
	}

	state, report := snapshot.Decode(cp.Payload)
	logReport(s.key, report)
	s.Engine.Load(state)
	slog.Info("Restored checkpoint", "id", id, "key", s.key)
	return report, nil
}
