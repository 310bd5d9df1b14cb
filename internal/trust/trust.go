// Package trust implements the persistent set of trusted peers (C2, spec §4.2).
package trust

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/logging"
	"openclipboard/internal/nodeerr"
)

var log = logging.Get("trust")

// Store is a mutex-serialised, JSON-file-backed trust store.
//
// Every mutator flushes the whole document atomically (write-temp-then-rename),
// per spec §4.2 and invariant 3 in §8.
type Store struct {
	mu      sync.Mutex
	path    string
	records map[string]types.TrustRecord
}

// Open loads path into memory, treating a missing file as an empty set
// (spec §3 "TrustStore" invariant, §4.2).
func Open(path string) (*Store, error) {
	s := &Store{path: path, records: make(map[string]types.TrustRecord)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read trust store", nodeerr.ErrIO)
	}

	var list []types.TrustRecord
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: parse trust store", nodeerr.ErrCorruptFile)
	}
	for _, rec := range list {
		s.records[rec.PeerID] = rec
	}
	return s, nil
}

// Add inserts or replaces (by PeerId) a trust record (spec §4.2).
func (s *Store) Add(peerID, pkB64, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[peerID] = types.TrustRecord{
		PeerID:      peerID,
		IdentityPK:  pkB64,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	return s.flushLocked()
}

// Get looks up a trust record by PeerId.
func (s *Store) Get(peerID string) (types.TrustRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[peerID]
	return rec, ok
}

// Remove deletes a trust record, returning whether it existed.
func (s *Store) Remove(peerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[peerID]; !ok {
		return false
	}
	delete(s.records, peerID)
	if err := s.flushLocked(); err != nil {
		log.Errorf("flush after remove: %v", err)
	}
	return true
}

// List returns all records sorted by display name for determinism (spec §4.2).
func (s *Store) List() []types.TrustRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.TrustRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}

// Clear removes every record and flushes an empty document.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]types.TrustRecord)
	if err := s.flushLocked(); err != nil {
		log.Errorf("flush after clear: %v", err)
	}
}

// IsTrusted is a convenience helper used by Session/Mesh.
func (s *Store) IsTrusted(peerID string) bool {
	_, ok := s.Get(peerID)
	return ok
}

func (s *Store) flushLocked() error {
	list := make([]types.TrustRecord, 0, len(s.records))
	for _, rec := range s.records {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PeerID < list[j].PeerID })

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trust store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s", nodeerr.ErrIO, dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp trust file", nodeerr.ErrIO)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp trust file", nodeerr.ErrIO)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: chmod trust file", nodeerr.ErrIO)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp trust file", nodeerr.ErrIO)
	}
	return os.Rename(tmpName, s.path)
}
