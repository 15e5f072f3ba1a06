package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig holds configuration for client IP extraction
type IPConfig struct {
	TrustedProxies []string // CIDR ranges of proxies whose forwarding headers are honored
}

// proxyHeaders lists the forwarding headers in priority order. The first
// present value wins; X-Forwarded-For may carry a comma-separated chain,
// in which case the leftmost entry is the client.
var proxyHeaders = []string{
	"CF-Connecting-IP",
	"X-Real-IP",
	"X-Forwarded-For",
	"X-Client-IP",
}

// ExtractClientIP returns a best-effort caller IP for the request.
//
// With no trusted-proxy configuration every forwarding header is honored
// as-is, which is trivially spoofable; deployments behind a known proxy
// tier should set IPConfig.TrustedProxies so headers are only believed
// when the TCP peer is one of those proxies. Falls back to RemoteAddr,
// and to the loopback address when nothing usable is present.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	honorHeaders := true
	if config != nil && len(config.TrustedProxies) > 0 {
		honorHeaders = isTrustedProxy(remoteIP, config.TrustedProxies)
	}

	if honorHeaders {
		for _, header := range proxyHeaders {
			value := r.Header.Get(header)
			if value == "" {
				continue
			}
			if header == "X-Forwarded-For" {
				value = strings.TrimSpace(strings.Split(value, ",")[0])
			}
			if value != "" {
				return value
			}
		}
	}

	return remoteIP
}

// getRemoteAddr extracts the IP address from RemoteAddr (removing port if present)
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr != "" {
		// RemoteAddr may include port: "ip:port"
		if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return ip
		}
		return r.RemoteAddr
	}
	return "127.0.0.1"
}

// isTrustedProxy checks if an IP address is within any of the trusted proxy CIDR ranges
func isTrustedProxy(ip string, trustedProxies []string) bool {
	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue // Skip invalid CIDR ranges
		}
		if ipNet.Contains(clientIP) {
			return true
		}
	}

	return false
}
