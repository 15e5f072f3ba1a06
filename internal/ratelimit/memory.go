package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window state in a process-local map. Entries are only
// replaced when their window expires; Sweep exists so a background task can
// reclaim long-dead windows, since the limiter itself never deletes.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	entry.Count++
	s.entries[key] = entry
	return nil
}

// Sweep removes entries whose window expired before now and returns how
// many were dropped. Observable limiter behavior is unchanged: an expired
// entry would have been replaced on its next access anyway.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.ResetTime) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Stats summarizes store occupancy for the operator endpoint
type Stats struct {
	ActiveKeys  int `json:"active_keys"`
	OpenWindows int `json:"open_windows"`
}

// Stats reports the number of tracked keys and how many still have a live window
func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stats := Stats{ActiveKeys: len(s.entries)}
	for _, entry := range s.entries {
		if now.Before(entry.ResetTime) {
			stats.OpenWindows++
		}
	}
	return stats
}
