package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// KV is the durable local key-value store the progress core persists into.
// Implementations are synchronous and local-only.
type KV interface {
	ReadString(ctx context.Context, key string) (string, error)
	WriteString(ctx context.Context, key, value string) error
}

// Timestamped is implemented by backends that track when a key was written.
type Timestamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// LastWrite reports when key was last persisted, if the backend records it.
func LastWrite(ctx context.Context, kv KV, key string) (time.Time, bool) {
	ts, ok := kv.(Timestamped)
	if !ok {
		return time.Time{}, false
	}
	at, err := ts.UpdatedAt(ctx, key)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Open builds the configured backend. The returned close func is never nil.
func Open(backend Backend, path string) (KV, func() error, error) {
	noop := func() error { return nil }
	switch Backend(strings.ToLower(string(backend))) {
	case BackendSQLite:
		repo, err := OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		if err := MigrateUp(repo.db); err != nil {
			_ = repo.Close()
			return nil, noop, err
		}
		return repo, repo.Close, nil
	case BackendFile:
		return NewFileKV(path), noop, nil
	case BackendMemory:
		return NewMemoryKV(), noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
