package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Security SecurityConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port         string `validate:"required"`
	Env          string `validate:"oneof=development staging production"`
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type SecurityConfig struct {
	AllowedOrigins   []string
	APIBaseURL       string `validate:"required,url"`
	CSRFEnabled      bool
	RateLimitEnabled bool
	LoginMaxAttempts int           `validate:"gte=1"`
	LoginWindow      time.Duration `validate:"gt=0"`
	GlobalRateLimit  int           `validate:"gte=1"`
	BlockedIPs       []string
	TrustedProxies   []string
	JWTSecret        string
	SweepInterval    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var validate = validator.New()

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          env,
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Security: SecurityConfig{
			AllowedOrigins:   parseAllowedOrigins(env),
			APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8000"),
			CSRFEnabled:      getEnvAsBool("CSRF_ENABLED", true),
			RateLimitEnabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginWindow:      getEnvAsDuration("LOGIN_WINDOW", 5*time.Minute),
			GlobalRateLimit:  getEnvAsInt("GLOBAL_RATE_LIMIT", 100),
			BlockedIPs:       parseList(getEnv("BLOCKED_IPS", "")),
			TrustedProxies:   parseList(getEnv("TRUSTED_PROXIES", "")),
			JWTSecret:        getEnv("JWT_SECRET", ""),
			SweepInterval:    getEnvAsDuration("SWEEP_INTERVAL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// The signing secret is optional (the gateway only verifies, never
	// issues), but a weak one in production is worse than none.
	if cfg.Security.JWTSecret != "" {
		if err := validateJWTSecret(cfg.Security.JWTSecret, env); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// UseRedis reports whether the shared limiter store is configured
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}

// validateJWTSecret enforces minimum security standards for the shared secret
func validateJWTSecret(secret, env string) error {
	minLength := 16 // Development minimum
	if env == "production" {
		minLength = 32 // Production requires stronger secret (256 bits)
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		// Default to no origins in production; CORS stays closed until
		// origins are configured explicitly.
		return parseList(getEnv("ALLOWED_ORIGINS", ""))
	}

	if origins := parseList(getEnv("ALLOWED_ORIGINS", "")); len(origins) > 0 {
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:4321",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:4321",
		"http://127.0.0.1:5173",
	}
}
