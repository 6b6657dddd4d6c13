package persistence

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryKVGetSet(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get on missing key: got %v, want ErrKeyNotFound", err)
	}

	if err := kv.Set(ctx, "ticket:1", `{"id":"1"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := kv.Get(ctx, "ticket:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != `{"id":"1"}` {
		t.Fatalf("Get: got %q", value)
	}
}

func TestMemoryKVListPrefix(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	entries := map[string]string{
		"ticket:a":         "1",
		"ticket:b":         "2",
		"customers-data":   "[]",
		"google-sheet-url": "x",
	}
	for key, value := range entries {
		if err := kv.Set(ctx, key, value); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	keys, err := kv.List(ctx, "ticket:")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("List: got %d keys, want 2: %v", len(keys), keys)
	}
	for _, key := range keys {
		if key != "ticket:a" && key != "ticket:b" {
			t.Fatalf("List returned unexpected key %q", key)
		}
	}

	all, err := kv.List(ctx, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != len(entries) {
		t.Fatalf("List all: got %d keys, want %d", len(all), len(entries))
	}
}

func TestMemoryKVDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	if err := kv.Set(ctx, "ticket:1", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Delete(ctx, "ticket:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "ticket:1"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrKeyNotFound", err)
	}
	// deleting an absent key is not an error
	if err := kv.Delete(ctx, "ticket:1"); err != nil {
		t.Fatalf("Delete absent key: %v", err)
	}
}
