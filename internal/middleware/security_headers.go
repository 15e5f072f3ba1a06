package middleware

import (
	"fmt"
	"net/http"
)

// SecurityHeadersConfig holds security headers configuration
type SecurityHeadersConfig struct {
	// APIBaseURL is appended to the CSP connect-src directive so the web
	// client can reach the backend API
	APIBaseURL string
}

// SecurityHeaders returns a middleware that attaches the standard security
// header set to every response.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	csp := buildCSP(config.APIBaseURL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// MIME sniffing prevention
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection: never allow framing
			w.Header().Set("X-Frame-Options", "DENY")

			// Legacy XSS filter for older browsers
			w.Header().Set("X-XSS-Protection", "1; mode=block")

			// Referrer only for same-origin requests
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Lock down sensitive browser APIs
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// HSTS: one year, all subdomains
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

			w.Header().Set("Content-Security-Policy", csp)

			next.ServeHTTP(w, r)
		})
	}
}

// buildCSP renders the fixed policy template with the backend API origin
// allowed in connect-src.
func buildCSP(apiBaseURL string) string {
	connectSrc := "'self'"
	if apiBaseURL != "" {
		connectSrc += " " + apiBaseURL
	}

	return fmt.Sprintf("default-src 'self'; "+
		"script-src 'self' 'unsafe-inline'; "+
		"style-src 'self' 'unsafe-inline'; "+
		"img-src 'self' data: https:; "+
		"font-src 'self'; "+
		"connect-src %s; "+
		"frame-ancestors 'none'; "+
		"base-uri 'self'; "+
		"form-action 'self'", connectSrc)
}
