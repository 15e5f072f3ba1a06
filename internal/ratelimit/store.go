package ratelimit

import (
	"context"
	"time"
)

// Entry is the window state kept per composite key
type Entry struct {
	Count     int       // attempts within the current window
	ResetTime time.Time // absolute time the window expires
}

// Store abstracts the window state so the in-memory implementation can be
// swapped for a shared cache in multi-process deployments without changing
// limiter call sites.
type Store interface {
	// Get returns the entry for key and whether one exists
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set overwrites the entry for key, expiring it at entry.ResetTime
	Set(ctx context.Context, key string, entry Entry) error
	// Increment adds one attempt to an existing entry
	Increment(ctx context.Context, key string) error
}
