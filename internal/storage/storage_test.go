package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("creating file backend: %v", err)
	}

	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("opening sqlite backend: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]KV{
		BackendMemory: NewMemory(),
		BackendFile:   file,
		BackendSQLite: sqlite,
	}
}

func TestKVGetMissingKey(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := kv.Get(context.Background(), "nope")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Fatalf("expected key to be absent, got %q", v)
			}
		})
	}
}

func TestKVSetOverwrites(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set(ctx, "calc_history", `[{"id":"a"}]`); err != nil {
				t.Fatalf("first set: %v", err)
			}
			if err := kv.Set(ctx, "calc_history", `[]`); err != nil {
				t.Fatalf("second set: %v", err)
			}

			v, ok, err := kv.Get(ctx, "calc_history")
			if err != nil || !ok {
				t.Fatalf("expected stored value, got ok=%t err=%v", ok, err)
			}
			if v != "[]" {
				t.Fatalf("expected %q, got %q", "[]", v)
			}
		})
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "kv")

	first, err := NewFile(dir)
	if err != nil {
		t.Fatalf("creating file backend: %v", err)
	}
	if err := first.Set(ctx, "a/b", "value"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewFile(dir)
	if err != nil {
		t.Fatalf("reopening file backend: %v", err)
	}
	v, ok, err := second.Get(ctx, "a/b")
	if err != nil || !ok || v != "value" {
		t.Fatalf("expected %q, got %q ok=%t err=%v", "value", v, ok, err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := first.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	first.Close()

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopening sqlite: %v", err)
	}
	defer second.Close()

	v, ok, err := second.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("expected %q, got %q ok=%t err=%v", "v", v, ok, err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, closeFn, err := Open(context.Background(), "redis", "")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if closeFn == nil {
		t.Fatal("expected non-nil close function")
	}
}

func TestOpenMemory(t *testing.T) {
	kv, closeFn, err := Open(context.Background(), BackendMemory, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	if _, ok := kv.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", kv)
	}
}
