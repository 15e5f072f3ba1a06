// Package middleware contains the request-interception pipeline the gateway
// runs ahead of the proxied backend: client identification, blocked-IP and
// injection screens, security headers, CORS, rate limiting, CSRF, origin
// validation and form sanitization.
package middleware

import (
	"context"
	"net/http"
	"path"
	"strings"

	pkghttp "github.com/botgate/botgate/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

// clientIPKey carries the resolved caller IP through the pipeline
const clientIPKey contextKey = "client_ip"

// ClientIdentifier resolves the caller IP once per request and stashes it
// in the context so later checks agree on the identity they key on.
func ClientIdentifier(ipConfig *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := pkghttp.ExtractClientIP(r, ipConfig)
			ctx := context.WithValue(r.Context(), clientIPKey, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the caller IP resolved by ClientIdentifier, or extracts
// it directly when the middleware did not run (tests, stray handlers).
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey).(string); ok {
		return ip
	}
	return pkghttp.ExtractClientIP(r, nil)
}

// staticExtensions are asset suffixes the security checks skip over
var staticExtensions = map[string]bool{
	".css": true, ".js": true, ".map": true, ".ico": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".woff": true, ".woff2": true, ".ttf": true,
}

// IsStaticAsset reports whether a path addresses a static asset
func IsStaticAsset(requestPath string) bool {
	if strings.HasPrefix(requestPath, "/static/") || strings.HasPrefix(requestPath, "/assets/") {
		return true
	}
	return staticExtensions[strings.ToLower(path.Ext(requestPath))]
}
