// Package storage provides the durable key-value backends the calculator
// persists its history into.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// KV is a minimal string key-value store.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Open builds the backend named by kind. path is the directory for the file
// backend and the database file for sqlite; memory ignores it.
// The returned close function is never nil.
func Open(ctx context.Context, kind, path string) (KV, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case BackendMemory:
		return NewMemory(), noop, nil
	case BackendFile:
		kv, err := NewFile(path)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	case BackendSQLite:
		kv, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, noop, err
		}
		return kv, kv.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
