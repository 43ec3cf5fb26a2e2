// Package history keeps the most recent try-on results in a single durable
// key-value slot.
//
// The in-memory list is authoritative. It is written back as a whole after
// every change; write failures are logged and otherwise ignored, so durability
// is best-effort.
package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/tryon/internal/models"
)

const (
	MaxEntries = 10
	StorageKey = "fashion_history_v2"
)

// KV is the durable slot the history is serialized into.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Store struct {
	mu      sync.RWMutex
	kv      KV
	entries []models.HistoryEntry
}

// Open loads the persisted history. Unreadable or unparsable data yields an
// empty history.
func Open(ctx context.Context, kv KV) *Store {
	s := &Store{kv: kv}

	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		slog.Warn("History load failed", "err", err)
		return s
	}
	if !ok || raw == "" {
		return s
	}

	entries, err := Unmarshal([]byte(raw))
	if err != nil {
		slog.Warn("History load failed", "err", err)
		return s
	}

	s.entries = entries
	slog.Debug("History loaded", "entries", len(entries))
	return s
}

// Add prepends entry and persists the truncated list.
func (s *Store) Add(ctx context.Context, entry models.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]models.HistoryEntry, 0, len(s.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, s.entries...)
	s.entries = truncate(entries)

	s.persist(ctx)
}

// List returns a copy of the entries, most recent first.
func (s *Store) List() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Get(id string) (models.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.HistoryEntry{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) {
	data, err := Marshal(s.entries)
	if err != nil {
		slog.Warn("History save failed", "err", err)
		return
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		slog.Warn("History save failed - likely storage full", "err", err)
	}
}

// Marshal serializes at most MaxEntries entries.
func Marshal(entries []models.HistoryEntry) ([]byte, error) {
	entries = truncate(entries)
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return json.Marshal(entries)
}

// Unmarshal parses a serialized list, keeping at most MaxEntries entries.
func Unmarshal(data []byte) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return truncate(entries), nil
}

func truncate(entries []models.HistoryEntry) []models.HistoryEntry {
	if len(entries) > MaxEntries {
		return entries[:MaxEntries]
	}
	return entries
}
