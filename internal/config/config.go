package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	RedisURL      string
	DBAutoMigrate bool

	QuoteSessionTTL  time.Duration
	LockTTL          time.Duration
	LockRetryBackoff time.Duration

	AccessPINHash     string
	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	AccessRateLimit   string
	APIRateLimit      string

	CORSAllowedOrigins []string
	BodyLimitBytes     int64
	TrustProxy         bool

	QueueConcurrency int
	WebhookURL       string
	WebhookSecret    string
	WebhookTimeout   time.Duration

	Obs ObsConfig
}

// ObsConfig groups the OBS_* observability settings.
type ObsConfig struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsBuckets   string
	EnablePrometheus bool
	EnableTracing    bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:        valueOrDefault(k.String("APP_ENV"), "development"),
		Port:          valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:   strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:      strings.TrimSpace(k.String("REDIS_URL")),
		DBAutoMigrate: parseBool(k.String("DB_AUTO_MIGRATE"), false),

		QuoteSessionTTL:  parseDuration(k.String("QUOTE_SESSION_TTL"), "24h"),
		LockTTL:          parseDuration(k.String("LOCK_TTL"), "5s"),
		LockRetryBackoff: parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),

		AccessPINHash:     strings.TrimSpace(k.String("ACCESS_PIN_HASH")),
		AccessTokenSecret: k.String("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:    parseDuration(k.String("ACCESS_TOKEN_TTL"), "8h"),
		AccessRateLimit:   valueOrDefault(k.String("ACCESS_RATE_LIMIT"), "5-M"),
		APIRateLimit:      valueOrDefault(k.String("API_RATE_LIMIT"), "300-M"),

		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		BodyLimitBytes:     parseInt64(k.String("BODY_LIMIT_BYTES"), 1<<20),
		TrustProxy:         parseBool(k.String("TRUST_PROXY"), false),

		QueueConcurrency: int(parseInt64(k.String("QUEUE_CONCURRENCY"), 5)),
		WebhookURL:       strings.TrimSpace(k.String("WEBHOOK_URL")),
		WebhookSecret:    k.String("WEBHOOK_SECRET"),
		WebhookTimeout:   parseDuration(k.String("WEBHOOK_TIMEOUT"), "5s"),

		Obs: ObsConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "nuvme"),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			EnablePrometheus: parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
			EnableTracing:    parseBool(k.String("OBS_ENABLE_TRACING"), false),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     k.String("OBS_OTLP_ENDPOINT"),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
		},
	}

	if cfg.AccessPINHash != "" && strings.TrimSpace(cfg.AccessTokenSecret) == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET is required when ACCESS_PIN_HASH is set")
	}
	if cfg.WebhookURL != "" && strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errors.New("WEBHOOK_SECRET is required when WEBHOOK_URL is set")
	}
	if cfg.QueueConcurrency <= 0 {
		cfg.QueueConcurrency = 1
	}
	if cfg.BodyLimitBytes <= 0 {
		cfg.BodyLimitBytes = 1 << 20
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// AccessGateEnabled reports whether the PIN gate protects the API.
func (c *Config) AccessGateEnabled() bool {
	return c.AccessPINHash != ""
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt64(value string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
