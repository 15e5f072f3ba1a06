package background

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is any store that can drop expired state in bulk
type Sweepable interface {
	Sweep(now time.Time) int
}

// Sweeper periodically reclaims expired rate-limit windows from the
// in-memory store. The limiter replaces expired entries on access anyway;
// the sweep only bounds memory for keys that never come back.
type Sweeper struct {
	store    Sweepable
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweeper creates a sweeper over the given store
func NewSweeper(store Sweepable, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep and blocks until stopped or the context
// is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := s.store.Sweep(time.Now())
			if removed > 0 {
				s.logger.Info("expired rate limit windows swept",
					slog.Int("removed", removed))
			}
		case <-s.stopCh:
			s.logger.Info("sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("sweeper context cancelled")
			return
		}
	}
}

// Stop signals the sweeper to stop
func (s *Sweeper) Stop() {
	close(s.stopCh)
}
