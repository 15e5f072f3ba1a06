package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	pkghttp "github.com/botgate/botgate/pkg/http"
)

// IsOriginAllowed applies the origin allow-list to a request. Requests with
// neither Origin nor Referer pass (direct navigation), and an empty
// allow-list means no restriction is configured.
func IsOriginAllowed(r *http.Request, allowedOrigins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		if referer := r.Header.Get("Referer"); referer != "" {
			if parsed, err := url.Parse(referer); err == nil && parsed.Scheme != "" && parsed.Host != "" {
				origin = parsed.Scheme + "://" + parsed.Host
			}
		}
	}

	if origin == "" {
		return true
	}
	if len(allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// OriginValidation rejects state-changing requests whose origin is not on
// the allow-list with a 403.
func OriginValidation(allowedOrigins []string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isStateChangingMethod(r.Method) || IsStaticAsset(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !IsOriginAllowed(r, allowedOrigins) {
				logger.Warn("request origin rejected",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("origin", r.Header.Get("Origin")),
					slog.String("client_ip", ClientIP(r)))
				pkghttp.WriteForbidden(w, "origin_rejected", "Origin not allowed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isStateChangingMethod checks if the HTTP method modifies state
func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
