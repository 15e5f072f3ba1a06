package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	pkglogger "github.com/botgate/botgate/pkg/logger"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// startTimeKey carries the request arrival time for downstream consumers
// (the proxy mirrors it back as X-Process-Time)
const startTimeKey contextKey = "start_time"

// RequestLogger logs every request with a correlation ID and sensitive
// query strings redacted. The correlation ID is stamped on the request
// before it is proxied so backend logs line up with gateway logs.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := uuid.NewString()
			r.Header.Set("X-Request-ID", requestID)
			w.Header().Set("X-Request-ID", requestID)

			wrapped := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			ctx := context.WithValue(r.Context(), startTimeKey, start)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)

			// Redact query strings that carry credentials or tokens
			path := r.URL.Path
			if pkglogger.SanitizeQueryString(r.URL.RawQuery) {
				path = path + "?[REDACTED]"
			} else if r.URL.RawQuery != "" {
				path = r.URL.Path + "?" + r.URL.RawQuery
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", path),
				slog.Int("status", wrapped.Status()),
				slog.Int64("bytes", int64(wrapped.BytesWritten())),
				slog.String("duration", duration.String()),
				slog.String("request_id", requestID),
				slog.String("client_ip", ClientIP(r)),
			}

			logger.LogAttrs(context.Background(), slog.LevelInfo, "http_request", attrs...)
		})
	}
}

// StartTime returns the arrival time recorded by RequestLogger
func StartTime(r *http.Request) (time.Time, bool) {
	start, ok := r.Context().Value(startTimeKey).(time.Time)
	return start, ok
}
