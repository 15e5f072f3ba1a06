// Package ratelimit implements fixed-window rate limiting keyed by
// (caller identity, route). Windows reset at their boundary rather than
// sliding; an expired entry is replaced on the next attempt, never
// incremented.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
)

const (
	// DefaultMaxAttempts is the per-window attempt budget
	DefaultMaxAttempts = 5
	// DefaultWindow is the fixed window length
	DefaultWindow = 5 * time.Minute
)

// sensitiveFragments mark the route families the limiter applies to
var sensitiveFragments = []string{"/login", "/register", "/api/", "/auth/"}

// Config holds limiter tuning
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultConfig returns the stock login-attempt limits
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Window:      DefaultWindow,
	}
}

// Result is the outcome of a limit check. ResetTime is only meaningful
// when the check was performed (fresh or live window); RetryAfter is the
// whole-second wait a rejected caller should observe.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter int
}

// Limiter applies a fixed-window budget per composite key. It is advisory:
// store failures allow the request through rather than blocking it.
type Limiter struct {
	store  Store
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter over the given store
func NewLimiter(store Store, config Config, logger *slog.Logger) *Limiter {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.Window <= 0 {
		config.Window = DefaultWindow
	}
	return &Limiter{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Check records an attempt for (identity, route) and reports whether it is
// within budget. The first attempt of a window, or any attempt after the
// stored window expired, starts a fresh window with count 1.
func (l *Limiter) Check(ctx context.Context, identity, route string) Result {
	key := identity + ":" + route
	now := l.now()

	entry, exists, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			slog.String("key", key),
			slog.Any("error", err))
		return Result{Allowed: true, Remaining: l.config.MaxAttempts - 1}
	}

	if !exists || now.After(entry.ResetTime) {
		fresh := Entry{Count: 1, ResetTime: now.Add(l.config.Window)}
		if err := l.store.Set(ctx, key, fresh); err != nil {
			l.logger.Warn("rate limit store write failed",
				slog.String("key", key),
				slog.Any("error", err))
		}
		return Result{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetTime: fresh.ResetTime,
		}
	}

	if entry.Count >= l.config.MaxAttempts {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetTime:  entry.ResetTime,
			RetryAfter: retryAfterSeconds(entry.ResetTime, now),
		}
	}

	if err := l.store.Increment(ctx, key); err != nil {
		l.logger.Warn("rate limit store increment failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
	return Result{
		Allowed:   true,
		Remaining: l.config.MaxAttempts - entry.Count - 1,
		ResetTime: entry.ResetTime,
	}
}

// MaxAttempts exposes the configured budget for response headers
func (l *Limiter) MaxAttempts() int {
	return l.config.MaxAttempts
}

// SensitiveRoute reports whether the limiter applies to a request path
func SensitiveRoute(path string) bool {
	for _, fragment := range sensitiveFragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// retryAfterSeconds rounds the remaining window up to whole seconds
func retryAfterSeconds(resetTime, now time.Time) int {
	remaining := resetTime.Sub(now).Seconds()
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}
