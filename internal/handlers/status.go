package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/botgate/botgate/internal/csrf"
	"github.com/botgate/botgate/internal/ratelimit"
)

// StatsProvider is satisfied by limiter stores that can report occupancy;
// the shared Redis store does not (counting keys there is not cheap).
type StatsProvider interface {
	Stats() ratelimit.Stats
}

// Health reports liveness
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}
}

type statsResponse struct {
	RateLimit       *ratelimit.Stats `json:"rate_limit,omitempty"`
	CSRFActiveCount int              `json:"csrf_active_tokens"`
}

// Stats reports limiter occupancy and the live CSRF token count for
// operators. statsProvider is nil when the limiter runs on a shared store.
func Stats(statsProvider StatsProvider, csrfManager *csrf.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{
			CSRFActiveCount: csrfManager.ActiveCount(),
		}
		if statsProvider != nil {
			stats := statsProvider.Stats()
			resp.RateLimit = &stats
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
