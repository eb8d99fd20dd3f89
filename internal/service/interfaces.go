// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"errors"
	"time"
)

// Storage errors shared by every backend.
var (
	ErrStateNotFound      = errors.New("no saved state")
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrCheckpointExists   = errors.New("checkpoint already exists")
)

// StateStore persists encoded ledger snapshots under a key.
type StateStore interface {
	// LoadState returns the payload saved under key, or ErrStateNotFound.
	LoadState(ctx context.Context, key string) ([]byte, error)
	// SaveState replaces the payload saved under key.
	SaveState(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Checkpoint is a named copy of a saved snapshot.
type Checkpoint struct {
	CreatedAt   time.Time
	ID          string
	StateKey    string
	Description string
	// Payload is empty in listings; GetCheckpoint fills it.
	Payload []byte
	Size    int
	IsAuto  bool
}

// CheckpointStore keeps snapshot checkpoints alongside the state.
type CheckpointStore interface {
	// CreateCheckpoint stores cp. An empty ID is generated from the current
	// time and an empty CreatedAt is set to now.
	CreateCheckpoint(ctx context.Context, cp *Checkpoint) error
	// ListCheckpoints returns the checkpoints of a state key, newest first.
	ListCheckpoints(ctx context.Context, stateKey string) ([]Checkpoint, error)
	GetCheckpoint(ctx context.Context, id string) (*Checkpoint, error)
	DeleteCheckpoint(ctx context.Context, id string) error
}
