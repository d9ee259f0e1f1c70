// Package store implements the C2 state store: the sole persistence and
// read-model boundary for domain.SystemState, plus the C11 decision
// ledger in audit.go.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
)

// Store holds the live domain.SystemState behind a sync.RWMutex. The
// engine goroutine is the only writer; Snapshot hands out a Clone()'d
// copy so read-model callers (the HTTP layer, tests) can never observe a
// partially-applied mutation or race with the next Commit.
type Store struct {
	mu    sync.RWMutex
	path  string
	state domain.SystemState
	fresh bool
}

// Open loads path if it exists and parses, or falls back to
// domain.NewSystemState() with error_status set to a warning — matching
// §7's "malformed/missing snapshot" resolution. A missing file is not
// itself a failure (first boot); a present-but-corrupt file is.
func Open(path string) (*Store, error) {
	s := &Store{path: path, state: domain.NewSystemState()}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.fresh = true
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var loaded domain.SystemState
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.state.Global.ErrorStatus = fmt.Sprintf("%s: %v", domain.ErrStateCorrupt, err)
		return s, nil
	}
	s.state = loaded
	return s, nil
}

// Fresh reports whether Open found no existing state file — the only
// condition under which a caller should seed the store with configured
// defaults rather than trust what's on disk.
func (s *Store) Fresh() bool {
	return s.fresh
}

// SeedSettings applies settings to a freshly-opened store and persists the
// result. Callers should only invoke this when Fresh() is true.
func (s *Store) SeedSettings(settings domain.UserSettings) error {
	s.mu.Lock()
	s.state.Settings = settings
	next := s.state
	s.mu.Unlock()

	return s.persist(next)
}

// Snapshot returns a deep-enough copy of the current state for read-model
// use. Safe to call concurrently with Commit.
func (s *Store) Snapshot() domain.SystemState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Commit replaces the live state and persists it to disk via a
// write-temp-then-rename, so a crash mid-write never corrupts the
// previous snapshot (§4.2, §5 "shared resources" rule).
func (s *Store) Commit(next domain.SystemState) error {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	return s.persist(next)
}

func (s *Store) persist(state domain.SystemState) error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}
