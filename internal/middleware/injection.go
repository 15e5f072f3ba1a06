package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	pkghttp "github.com/botgate/botgate/pkg/http"
)

// sqlInjectionPatterns are lowercase fragments screened out of query
// strings and JSON bodies. Crude substring matching, same as the backend's
// own screen; the real defense is parameterized queries behind the proxy.
var sqlInjectionPatterns = []string{
	"union select",
	"drop table",
	"delete from",
	"insert into",
	"update set",
	"exec(",
	"execute(",
	"'; --",
	"' or '1'='1",
	"' or 1=1",
	"admin'--",
	"admin'/*",
}

// maxScreenedBody caps how much request body the screen will inspect
const maxScreenedBody = 1 << 20 // 1 MiB

// InjectionScreen rejects requests whose query string or JSON body carries
// obvious SQL injection fragments.
func InjectionScreen(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsStaticAsset(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			query := r.URL.RawQuery
			if decoded, err := url.QueryUnescape(query); err == nil {
				query = decoded
			}
			if pattern := matchInjection(strings.ToLower(query)); pattern != "" {
				logger.Warn("SQL injection attempt in query string",
					slog.String("client_ip", ClientIP(r)),
					slog.String("path", r.URL.Path),
					slog.String("pattern", pattern))
				pkghttp.WriteBadRequest(w, "Invalid request")
				return
			}

			if isJSONContent(r.Header.Get("Content-Type")) && r.Body != nil {
				raw, err := io.ReadAll(io.LimitReader(r.Body, maxScreenedBody))
				r.Body.Close()
				if err == nil {
					r.Body = io.NopCloser(bytes.NewReader(raw))
					r.ContentLength = int64(len(raw))
					if pattern := matchInjection(strings.ToLower(string(raw))); pattern != "" {
						logger.Warn("SQL injection attempt in body",
							slog.String("client_ip", ClientIP(r)),
							slog.String("path", r.URL.Path),
							slog.String("pattern", pattern))
						pkghttp.WriteBadRequest(w, "Invalid request")
						return
					}
				} else {
					r.Body = io.NopCloser(bytes.NewReader(nil))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matchInjection returns the first matching pattern, or empty
func matchInjection(lowered string) string {
	for _, pattern := range sqlInjectionPatterns {
		if strings.Contains(lowered, pattern) {
			return pattern
		}
	}
	return ""
}

// isJSONContent matches the JSON content type, ignoring parameters
func isJSONContent(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return strings.EqualFold(mediaType, "application/json")
}
