package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/botgate/botgate/internal/auth"
	"github.com/botgate/botgate/internal/csrf"
	pkghttp "github.com/botgate/botgate/pkg/http"
	pkglogger "github.com/botgate/botgate/pkg/logger"
)

// CSRFConfig controls when tokens are enforced and issued
type CSRFConfig struct {
	Enabled bool
	Env     string // enforcement only happens in production
}

// tokenPages are the page families that receive a fresh token on GET
var tokenPages = []string{"/login", "/register", "/dashboard"}

// CSRFProtection validates one-time tokens on state-changing requests.
// API callers carrying a Bearer authorization header bypass the check
// entirely: they authenticate per request and are not cookie-driven, so
// cross-site request forgery does not apply to them.
func CSRFProtection(manager *csrf.Manager, config CSRFConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || config.Env != "production" {
				next.ServeHTTP(w, r)
				return
			}
			if !isStateChangingMethod(r.Method) || IsStaticAsset(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if auth.HasBearerToken(r) {
				next.ServeHTTP(w, r)
				return
			}

			// Token arrives via custom header or query parameter
			token := r.Header.Get("X-CSRF-Token")
			if token == "" {
				token = r.URL.Query().Get("csrf_token")
			}

			if token == "" || !manager.Validate(token) {
				logger.Warn("CSRF token missing or invalid",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("client_ip", ClientIP(r)))
				pkghttp.WriteForbidden(w, "csrf_invalid", "CSRF token missing or invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFIssuance hands out a fresh one-time token on GET requests to the
// login, register and dashboard pages. The token travels in the
// X-CSRF-Token response header and is mirrored into a cookie the web
// client can read.
func CSRFIssuance(manager *csrf.Manager, config CSRFConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || r.Method != http.MethodGet || !isTokenPage(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := manager.Generate()
			if err != nil {
				logger.Error("failed to generate CSRF token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-CSRF-Token", token)
			http.SetCookie(w, &http.Cookie{
				Name:     "csrf_token",
				Value:    token,
				Path:     "/",
				HttpOnly: false, // the web client reads it back
				Secure:   config.Env == "production",
				SameSite: http.SameSiteStrictMode,
			})

			logger.Debug("CSRF token issued",
				slog.String("path", r.URL.Path),
				pkglogger.RedactedAttr("token", token, config.Env))

			next.ServeHTTP(w, r)
		})
	}
}

// isTokenPage reports whether a GET path qualifies for token issuance
func isTokenPage(path string) bool {
	for _, page := range tokenPages {
		if strings.Contains(path, page) {
			return true
		}
	}
	return false
}
