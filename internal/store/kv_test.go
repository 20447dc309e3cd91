package store

import (
	"path/filepath"
	"testing"
)

func TestSQLiteKVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV err: %v", err)
	}
	defer kv.Close()

	if _, ok, err := kv.Get("chatSessions"); err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := kv.Put("chatSessions", `[]`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Put("chatSessions", `[{"id":"s1"}]`); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	value, ok, err := kv.Get("chatSessions")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != `[{"id":"s1"}]` {
		t.Fatalf("unexpected value: ok=%v value=%s", ok, value)
	}
}

func TestSQLiteKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV err: %v", err)
	}
	if err := kv.Put("activeSessionId", "s1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen err: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("activeSessionId")
	if err != nil || !ok || value != "s1" {
		t.Fatalf("expected persisted value, got value=%q ok=%v err=%v", value, ok, err)
	}
}
