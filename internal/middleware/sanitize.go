package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/botgate/botgate/internal/sanitize"
)

// maxFormBytes caps how much of a form body the sanitizer will buffer
const maxFormBytes = 1 << 20 // 1 MiB

// FormSanitizer rewrites form-encoded POST bodies with every key and value
// run through the sanitizer. A body that cannot be parsed is passed through
// unmodified with a warning: availability over strictness, the body was
// going to fail form parsing downstream anyway.
func FormSanitizer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !isFormEncoded(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
			r.Body.Close()
			if err != nil {
				logger.Warn("failed to read form body, passing request through",
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				r.Body = io.NopCloser(bytes.NewReader(nil))
				next.ServeHTTP(w, r)
				return
			}

			values, err := url.ParseQuery(string(raw))
			if err != nil {
				// Fail open: restore the original body untouched
				logger.Warn("failed to parse form body, passing request through",
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				r.Body = io.NopCloser(bytes.NewReader(raw))
				r.ContentLength = int64(len(raw))
				next.ServeHTTP(w, r)
				return
			}

			clean := url.Values{}
			for key, vals := range values {
				cleanKey := sanitize.String(key)
				for _, val := range vals {
					clean.Add(cleanKey, sanitize.String(val))
				}
			}

			encoded := clean.Encode()
			r.Body = io.NopCloser(strings.NewReader(encoded))
			r.ContentLength = int64(len(encoded))
			// Downstream form parsing must not reuse the pre-rewrite cache
			r.Form = nil
			r.PostForm = nil

			next.ServeHTTP(w, r)
		})
	}
}

// isFormEncoded matches the urlencoded content type, ignoring parameters
func isFormEncoded(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return strings.EqualFold(mediaType, "application/x-www-form-urlencoded")
}
