package middleware

import (
	"log/slog"
	"net/http"

	pkghttp "github.com/botgate/botgate/pkg/http"
)

// Blocklist rejects requests from explicitly blocked IPs before any other
// check runs.
func Blocklist(blockedIPs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	blocked := make(map[string]struct{}, len(blockedIPs))
	for _, ip := range blockedIPs {
		blocked[ip] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(blocked) > 0 {
				if _, found := blocked[ClientIP(r)]; found {
					logger.Warn("blocked IP rejected",
						slog.String("client_ip", ClientIP(r)),
						slog.String("path", r.URL.Path))
					pkghttp.WriteForbidden(w, "ip_blocked", "IP address blocked")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
