package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/ulule/limiter/v3"
)

const (
	defaultAppEnv        = "development"
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultWatchInterval = "5s"
	defaultLogFormat     = "json"
	defaultLogLevel      = "info"
	defaultMetricsNS     = "ecopouch"
	defaultQuoteRate     = "120-M"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv               string
	Port                 string
	DBPath               string
	AdminEmail           string
	AdminPassword        string
	SessionSecret        string
	CatalogPath          string
	CatalogWatchInterval time.Duration
	CORSAllowedOrigins   []string
	LogFormat            string
	LogLevel             string
	MetricsNamespace     string
	QuoteRateLimit       limiter.Rate
	QuoteRateLimitRaw    string

	// Warnings lists settings that are missing but not fatal. The caller logs them.
	Warnings []string
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an error.
func LoadFrom(dotenvPath string) (Config, error) {
	if err := loadDotEnv(dotenvPath); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), defaultAppEnv),
		Port:               valueOrDefault(k.String("PORT"), defaultPort),
		DBPath:             valueOrDefault(k.String("DB_PATH"), defaultDBPath),
		AdminEmail:         strings.TrimSpace(k.String("ADMIN_EMAIL")),
		AdminPassword:      k.String("ADMIN_PASSWORD"),
		SessionSecret:      k.String("SESSION_SECRET"),
		CatalogPath:        strings.TrimSpace(k.String("CATALOG_PATH")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		LogFormat:          valueOrDefault(k.String("LOG_FORMAT"), defaultLogFormat),
		LogLevel:           valueOrDefault(k.String("LOG_LEVEL"), defaultLogLevel),
		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), defaultMetricsNS),
		QuoteRateLimitRaw:  valueOrDefault(k.String("QUOTE_RATE_LIMIT"), defaultQuoteRate),
	}

	interval, err := time.ParseDuration(valueOrDefault(k.String("CATALOG_WATCH_INTERVAL"), defaultWatchInterval))
	if err != nil {
		return Config{}, fmt.Errorf("CATALOG_WATCH_INTERVAL: %w", err)
	}
	if interval < 0 {
		return Config{}, fmt.Errorf("CATALOG_WATCH_INTERVAL must not be negative")
	}
	cfg.CatalogWatchInterval = interval

	cfg.QuoteRateLimit, err = limiter.NewRateFromFormatted(cfg.QuoteRateLimitRaw)
	if err != nil {
		return Config{}, fmt.Errorf("QUOTE_RATE_LIMIT: %w", err)
	}

	if cfg.AdminEmail == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		// An empty HMAC key makes admin sessions forgeable.
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("SESSION_SECRET is required when APP_ENV=%s", cfg.AppEnv)
		}
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
		cfg.Warnings = append(cfg.Warnings, "SESSION_SECRET is not set; using a random secret, admin sessions end on restart")
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, defaultAppEnv) || strings.EqualFold(c.AppEnv, "dev")
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c Config) HTTPAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
