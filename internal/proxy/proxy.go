// Package proxy forwards requests that cleared the security pipeline to
// the backend API.
package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/botgate/botgate/internal/middleware"
	pkghttp "github.com/botgate/botgate/pkg/http"
)

// Backend is a reverse proxy to the upstream API
type Backend struct {
	proxy  *httputil.ReverseProxy
	target *url.URL
}

// New builds a reverse proxy for the given API base URL
func New(apiBaseURL string, logger *slog.Logger) (*Backend, error) {
	target, err := url.Parse(apiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", apiBaseURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("API base URL %q must be absolute", apiBaseURL)
	}

	rp := httputil.NewSingleHostReverseProxy(target)

	rp.ModifyResponse = func(resp *http.Response) error {
		if start, ok := middleware.StartTime(resp.Request); ok {
			elapsed := time.Since(start).Seconds()
			resp.Header.Set("X-Process-Time", strconv.FormatFloat(elapsed, 'f', 4, 64))
		}
		return nil
	}

	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("backend unreachable",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		pkghttp.WriteError(w, http.StatusBadGateway, "backend_unavailable", "Upstream service unavailable")
	}

	return &Backend{proxy: rp, target: target}, nil
}

// Target returns the upstream URL the proxy forwards to
func (b *Backend) Target() *url.URL {
	return b.target
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.proxy.ServeHTTP(w, r)
}
