package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/botgate/botgate/internal/auth"
	"github.com/botgate/botgate/internal/config"
	"github.com/botgate/botgate/internal/csrf"
	"github.com/botgate/botgate/internal/handlers"
	"github.com/botgate/botgate/internal/middleware"
	"github.com/botgate/botgate/internal/ratelimit"
	pkghttp "github.com/botgate/botgate/pkg/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps carries everything the pipeline needs
type Deps struct {
	Config       *config.Config
	Logger       *slog.Logger
	Limiter      *ratelimit.Limiter
	LimiterStats handlers.StatsProvider // nil when the store cannot report occupancy
	CSRFManager  *csrf.Manager
	Inspector    *auth.BearerInspector
	Backend      http.Handler
}

// Register assembles the security pipeline and mounts the gateway routes.
// Check order follows the original middleware: identification, blocklist,
// global throttle, injection screen, per-route rate limit, CSRF, origin,
// form sanitization, token issuance, then the proxied backend.
func Register(router chi.Router, deps Deps) {
	sec := deps.Config.Security

	csrfConfig := middleware.CSRFConfig{
		Enabled: sec.CSRFEnabled,
		Env:     deps.Config.Server.Env,
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = sec.AllowedOrigins

	ipConfig := &pkghttp.IPConfig{TrustedProxies: sec.TrustedProxies}

	router.Use(middleware.ClientIdentifier(ipConfig))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
		APIBaseURL: sec.APIBaseURL,
	}))
	router.Use(middleware.CORS(corsConfig))
	router.Use(middleware.Blocklist(sec.BlockedIPs, deps.Logger))
	if sec.RateLimitEnabled {
		router.Use(middleware.GlobalThrottle(sec.GlobalRateLimit))
	}
	router.Use(middleware.InjectionScreen(deps.Logger))
	if sec.RateLimitEnabled {
		router.Use(middleware.RateLimit(deps.Limiter, deps.Inspector, deps.Logger))
	}
	router.Use(middleware.CSRFProtection(deps.CSRFManager, csrfConfig, deps.Logger))
	router.Use(middleware.OriginValidation(sec.AllowedOrigins, deps.Logger))
	router.Use(middleware.FormSanitizer(deps.Logger))
	router.Use(middleware.CSRFIssuance(deps.CSRFManager, csrfConfig, deps.Logger))

	router.Get("/health", handlers.Health())
	router.Get("/internal/stats", handlers.Stats(deps.LimiterStats, deps.CSRFManager))

	// Everything else goes to the backend
	router.Handle("/*", deps.Backend)
}
