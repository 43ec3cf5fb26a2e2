package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/tryon/internal/history"
	"github.com/lehigh-university-libraries/tryon/internal/models"
	"github.com/lehigh-university-libraries/tryon/internal/wizard"
)

var (
	_ history.KV = (*SQLiteKV)(nil)
	_ history.KV = (*MemoryKV)(nil)
)

func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "tryon.db")

	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Errorf("Expected v2 after reopen, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestHistorySurvivesRestartInSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tryon.db")

	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	store := history.Open(ctx, kv)
	for i := 0; i < 12; i++ {
		store.Add(ctx, models.HistoryEntry{ID: string(rune('a' + i)), ImageURL: "data:image/png;base64,QQ==", Timestamp: int64(i)})
	}
	kv.Close()

	kv, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer kv.Close()

	entries := history.Open(ctx, kv).List()
	if len(entries) != history.MaxEntries {
		t.Fatalf("Expected %d entries, got %d", history.MaxEntries, len(entries))
	}
	if entries[0].ID != "l" || entries[9].ID != "c" {
		t.Errorf("Expected newest first, got %s..%s", entries[0].ID, entries[9].ID)
	}
}

func TestSessionStore(t *testing.T) {
	s := New()
	c := wizard.NewController(nil, nil, nil, nil)

	id := s.Create(c)
	if id == "" {
		t.Fatal("Expected session ID")
	}
	got, ok := s.Get(id)
	if !ok || got != c {
		t.Error("Expected stored controller")
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", s.Len())
	}

	if !s.Delete(id) {
		t.Error("Expected Delete to report an existing session")
	}
	if _, ok := s.Get(id); ok {
		t.Error("Expected session deleted")
	}
	if s.Delete(id) {
		t.Error("Expected second Delete to report nothing removed")
	}
}

func TestSessionStoreSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return now }

	idle := s.Create(wizard.NewController(nil, nil, nil, nil))
	active := s.Create(wizard.NewController(nil, nil, nil, nil))

	now = now.Add(45 * time.Minute)
	if _, ok := s.Get(active); !ok {
		t.Fatal("Expected active session")
	}

	now = now.Add(30 * time.Minute)
	if removed := s.Sweep(time.Hour); removed != 1 {
		t.Errorf("Expected 1 session swept, got %d", removed)
	}
	if _, ok := s.Get(idle); ok {
		t.Error("Expected idle session removed")
	}
	if _, ok := s.Get(active); !ok {
		t.Error("Expected active session kept")
	}
}
