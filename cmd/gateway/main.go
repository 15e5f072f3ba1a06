package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/botgate/botgate/internal/auth"
	"github.com/botgate/botgate/internal/background"
	"github.com/botgate/botgate/internal/config"
	"github.com/botgate/botgate/internal/csrf"
	"github.com/botgate/botgate/internal/handlers"
	"github.com/botgate/botgate/internal/proxy"
	"github.com/botgate/botgate/internal/ratelimit"
	"github.com/botgate/botgate/internal/routes"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("api_base_url", cfg.Security.APIBaseURL))

	// Limiter store: shared Redis when configured, process-local otherwise
	var store ratelimit.Store
	var statsProvider handlers.StatsProvider
	var sweeper *background.Sweeper

	if cfg.UseRedis() {
		redisStore, err := ratelimit.NewRedisStore(ratelimit.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("rate limit store: redis", slog.String("addr", cfg.Redis.Addr))
	} else {
		memStore := ratelimit.NewMemoryStore()
		store = memStore
		statsProvider = memStore
		sweeper = background.NewSweeper(memStore, logger, cfg.Security.SweepInterval)
		logger.Info("rate limit store: in-memory (limits are per-process)")
	}

	limiter := ratelimit.NewLimiter(store, ratelimit.Config{
		MaxAttempts: cfg.Security.LoginMaxAttempts,
		Window:      cfg.Security.LoginWindow,
	}, logger)

	csrfManager := csrf.NewManager()
	inspector := auth.NewBearerInspector(cfg.Security.JWTSecret, logger)

	backend, err := proxy.New(cfg.Security.APIBaseURL, logger)
	if err != nil {
		logger.Error("failed to build backend proxy", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup router
	router := chi.NewRouter()
	routes.Register(router, routes.Deps{
		Config:       cfg,
		Logger:       logger,
		Limiter:      limiter,
		LimiterStats: statsProvider,
		CSRFManager:  csrfManager,
		Inspector:    inspector,
		Backend:      backend,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start sweeper
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	if sweeper != nil {
		go sweeper.Start(sweepCtx)
	}

	// Start server
	go func() {
		logger.Info("starting gateway", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("gateway stopped gracefully")
}
