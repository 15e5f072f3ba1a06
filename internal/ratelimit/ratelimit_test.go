package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestLimiter(config Config) (*Limiter, *time.Time) {
	limiter := NewLimiter(NewMemoryStore(), config, testLogger())
	now := time.Now()
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

func TestCheck_AllowsUpToMaxAttempts(t *testing.T) {
	limiter, _ := newTestLimiter(Config{MaxAttempts: 5, Window: 5 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result := limiter.Check(ctx, "203.0.113.1", "/auth/login")
		require.True(t, result.Allowed, "attempt %d should be allowed", i+1)
	}

	result := limiter.Check(ctx, "203.0.113.1", "/auth/login")
	assert.False(t, result.Allowed, "attempt past the budget must be rejected")
	assert.Equal(t, 0, result.Remaining)
	assert.Greater(t, result.RetryAfter, 0)
}

func TestCheck_RemainingCountsDown(t *testing.T) {
	limiter, _ := newTestLimiter(Config{MaxAttempts: 3, Window: time.Minute})
	ctx := context.Background()

	assert.Equal(t, 2, limiter.Check(ctx, "ip", "/login").Remaining)
	assert.Equal(t, 1, limiter.Check(ctx, "ip", "/login").Remaining)
	assert.Equal(t, 0, limiter.Check(ctx, "ip", "/login").Remaining)
}

func TestCheck_ExpiredWindowStartsFresh(t *testing.T) {
	limiter, now := newTestLimiter(Config{MaxAttempts: 2, Window: time.Minute})
	ctx := context.Background()

	limiter.Check(ctx, "ip", "/login")
	limiter.Check(ctx, "ip", "/login")
	require.False(t, limiter.Check(ctx, "ip", "/login").Allowed)

	// Past the window boundary the entry is replaced, not incremented
	*now = now.Add(time.Minute + time.Second)

	result := limiter.Check(ctx, "ip", "/login")
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining, "fresh window starts at count 1")
}

func TestCheck_KeysAreIsolated(t *testing.T) {
	limiter, _ := newTestLimiter(Config{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	require.True(t, limiter.Check(ctx, "ip-a", "/login").Allowed)
	require.False(t, limiter.Check(ctx, "ip-a", "/login").Allowed)

	// Different identity, same route
	assert.True(t, limiter.Check(ctx, "ip-b", "/login").Allowed)
	// Same identity, different route
	assert.True(t, limiter.Check(ctx, "ip-a", "/register").Allowed)
}

func TestCheck_RetryAfterRoundsUp(t *testing.T) {
	limiter, now := newTestLimiter(Config{MaxAttempts: 1, Window: time.Minute})
	ctx := context.Background()

	limiter.Check(ctx, "ip", "/login")

	*now = now.Add(29500 * time.Millisecond)
	result := limiter.Check(ctx, "ip", "/login")

	require.False(t, result.Allowed)
	// 30.5s remain in the window; Retry-After is ceil'd to whole seconds
	assert.Equal(t, 31, result.RetryAfter)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("store down")
}
func (failingStore) Set(context.Context, string, Entry) error   { return errors.New("store down") }
func (failingStore) Increment(context.Context, string) error    { return errors.New("store down") }

func TestCheck_StoreFailure_FailsOpen(t *testing.T) {
	limiter := NewLimiter(failingStore{}, DefaultConfig(), testLogger())

	result := limiter.Check(context.Background(), "ip", "/login")

	assert.True(t, result.Allowed, "advisory limiter must not block on store failure")
}

func TestSensitiveRoute(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/login", true},
		{"/app/login", true},
		{"/register", true},
		{"/api/v1/chatbots", true},
		{"/auth/refresh", true},
		{"/dashboard", false},
		{"/static/app.js", false},
		{"/", false},
	}

	for _, tt := range tests {
		if got := SensitiveRoute(tt.path); got != tt.want {
			t.Errorf("SensitiveRoute(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Set(ctx, "expired", Entry{Count: 3, ResetTime: now.Add(-time.Minute)}))
	require.NoError(t, store.Set(ctx, "live", Entry{Count: 1, ResetTime: now.Add(time.Minute)}))

	removed := store.Sweep(now)

	assert.Equal(t, 1, removed)
	_, exists, _ := store.Get(ctx, "expired")
	assert.False(t, exists)
	_, exists, _ = store.Get(ctx, "live")
	assert.True(t, exists)
}

func TestMemoryStore_IncrementMissingKeyIsNoop(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Increment(ctx, "absent"))

	_, exists, err := store.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_Stats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.Set(ctx, "live", Entry{Count: 1, ResetTime: now.Add(time.Minute)})
	store.Set(ctx, "expired", Entry{Count: 5, ResetTime: now.Add(-time.Minute)})

	stats := store.Stats()

	assert.Equal(t, 2, stats.ActiveKeys)
	assert.Equal(t, 1, stats.OpenWindows)
}
