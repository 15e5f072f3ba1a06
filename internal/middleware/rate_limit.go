package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/botgate/botgate/internal/auth"
	"github.com/botgate/botgate/internal/ratelimit"
	pkghttp "github.com/botgate/botgate/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimit applies the fixed-window budget to sensitive routes. The
// identity is the verified bearer subject when available, the client IP
// otherwise, so authenticated callers are not throttled by a shared NAT.
func RateLimit(limiter *ratelimit.Limiter, inspector *auth.BearerInspector, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ratelimit.SensitiveRoute(r.URL.Path) || IsStaticAsset(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			identity := ClientIP(r)
			if inspector != nil {
				if subject, ok := inspector.Subject(r); ok {
					identity = subject
				}
			}

			result := limiter.Check(r.Context(), identity, r.URL.Path)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.MaxAttempts()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			if !result.ResetTime.IsZero() {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))
			}

			if !result.Allowed {
				logger.Warn("rate limit exceeded",
					slog.String("identity", identity),
					slog.String("path", r.URL.Path),
					slog.Int("retry_after", result.RetryAfter))
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalThrottle caps total requests per client IP across all routes,
// independent of the per-route login limiter.
func GlobalThrottle(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return ClientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests")
		}),
	)
}
