// Package storage provides the persistence layer for ledger snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidKey     = errors.New("invalid state key")
	ErrInvalidTag     = errors.New("invalid checkpoint tag")
	ErrInvalidPayload = errors.New("invalid state payload")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateKey ensures a state key can double as a file name.
func validateKey(key string) error {
	if err := validateString(key, "key"); err != nil {
		return err
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q cannot contain path separators", ErrInvalidKey, key)
	}
	return nil
}

// validateTag rejects checkpoint tags that could escape a directory.
func validateTag(tag string) error {
	if strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: cannot contain path separators", ErrInvalidTag)
	}
	if strings.TrimSpace(tag) != tag {
		return fmt.Errorf("%w: surrounding whitespace", ErrInvalidTag)
	}
	return nil
}

// validatePayload ensures a payload is present.
func validatePayload(payload []byte) error {
	if payload == nil {
		return fmt.Errorf("%w: payload", ErrNilParameter)
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	return nil
}
