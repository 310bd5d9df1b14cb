// Package history implements the bounded clipboard history store (C8, spec
// §4.8). The default store is in-memory only; spec §9 requires an explicit
// opt-in before anything is written to disk, which PersistentStore provides.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/logging"
)

var log = logging.Get("history")

// Store is a bounded, thread-safe, in-memory clipboard history ring buffer.
type Store struct {
	mu      sync.Mutex
	limit   int
	entries []types.HistoryEntry // oldest first
}

// New builds a Store bounded to limit entries, clamped to
// [MinHistoryLimit, MaxHistoryLimit].
func New(limit int) *Store {
	return &Store{limit: clampLimit(limit)}
}

func clampLimit(limit int) int {
	if limit < types.MinHistoryLimit {
		return types.MinHistoryLimit
	}
	if limit > types.MaxHistoryLimit {
		return types.MaxHistoryLimit
	}
	return limit
}

// Record appends a new entry, evicting the oldest if the store is full, and
// returns the generated entry id.
func (s *Store) Record(content, sourcePeer string) string {
	id := uuid.NewString()
	entry := types.HistoryEntry{
		ID:          id,
		Content:     content,
		SourcePeer:  sourcePeer,
		TimestampMS: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	s.mu.Unlock()

	return id
}

// List returns up to limit most-recent entries, newest first.
func (s *Store) List(limit int) []types.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.entries, func(types.HistoryEntry) bool { return true }, limit)
}

// ListForPeer returns up to limit most-recent entries whose SourcePeer
// matches sourcePeer, newest first.
func (s *Store) ListForPeer(sourcePeer string, limit int) []types.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.entries, func(e types.HistoryEntry) bool { return e.SourcePeer == sourcePeer }, limit)
}

// Find looks up an entry by id.
func (s *Store) Find(id string) (types.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return types.HistoryEntry{}, false
}

// SetLimit changes the bound, clamped to [MinHistoryLimit, MaxHistoryLimit],
// trimming the oldest entries immediately if the store now holds too many.
func (s *Store) SetLimit(n int) {
	n = clampLimit(n)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = n
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
}

func newestFirst(entries []types.HistoryEntry, keep func(types.HistoryEntry) bool, limit int) []types.HistoryEntry {
	if limit <= 0 {
		return nil
	}
	out := make([]types.HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}
