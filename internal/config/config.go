package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Keys that are mirrored between the process environment and the env_vars table.
const (
	KeyAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	KeyShopifyAccessToken = "SHOPIFY_ACCESS_TOKEN"
	KeyShopifyStoreURL    = "SHOPIFY_STORE_URL"
	KeySecretKey          = "SECRET_KEY"
	KeyDatabaseURI        = "DATABASE_URI"
	KeyGeminiAPIKey       = "GEMINI_API_KEY"
)

// Config is an immutable snapshot of runtime settings. Use WithOverrides to derive
// a new snapshot instead of mutating one that services already hold.
type Config struct {
	// Database
	DatabaseURI string

	// Operator auth
	SecretKey            string
	JWTAccessExpiry      time.Duration
	OperatorPasswordHash string
	AdminToken           string

	// Tagging (Anthropic primary, Gemini fallback)
	AnthropicAPIKey  string
	AnthropicAPIURL  string
	AnthropicModel   string
	AnthropicVersion string
	GeminiAPIKey     string
	GeminiModel      string
	AITimeout        time.Duration
	TagBatchSize     int

	// Shopify
	ShopifyStoreURL    string
	ShopifyAccessToken string
	ShopifyAPIVersion  string
	ShopifyTimeout     time.Duration

	// Sessions
	RedisURL          string
	SessionExpiration time.Duration

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	return &Config{
		DatabaseURI: getEnv(KeyDatabaseURI, "sqlite://shopify_automation.db"),

		SecretKey:            getEnv(KeySecretKey, "dev-secret-key"),
		JWTAccessExpiry:      parseDuration(getEnv("JWT_ACCESS_EXPIRY", "12h")),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		AdminToken:           getEnv("ADMIN_TOKEN", ""),

		AnthropicAPIKey:  getEnv(KeyAnthropicAPIKey, ""),
		AnthropicAPIURL:  getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com/v1/messages"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		AnthropicVersion: getEnv("ANTHROPIC_VERSION", "2023-06-01"),
		GeminiAPIKey:     getEnv(KeyGeminiAPIKey, ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:        parseDuration(getEnv("AI_TIMEOUT", "60s")),
		TagBatchSize:     parseInt(getEnv("TAG_BATCH_SIZE", "50"), 50),

		ShopifyStoreURL:    normalizeStoreURL(getEnv(KeyShopifyStoreURL, "")),
		ShopifyAccessToken: getEnv(KeyShopifyAccessToken, ""),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-01"),
		ShopifyTimeout:     parseDuration(getEnv("SHOPIFY_TIMEOUT", "30s")),

		RedisURL:          getEnv("REDIS_URL", ""),
		SessionExpiration: parseDuration(getEnv("SESSION_EXPIRATION", "720h")),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

// DefaultEnvVars returns the keys that must exist in the env_vars table after boot,
// seeded from the bootstrap configuration.
func DefaultEnvVars(cfg *Config) map[string]string {
	return map[string]string{
		KeyAnthropicAPIKey:    cfg.AnthropicAPIKey,
		KeyShopifyAccessToken: cfg.ShopifyAccessToken,
		KeyShopifyStoreURL:    cfg.ShopifyStoreURL,
		KeySecretKey:          cfg.SecretKey,
		KeyDatabaseURI:        cfg.DatabaseURI,
	}
}

// IsDefaultKey reports whether key is one of the protected default env vars.
func IsDefaultKey(key string) bool {
	switch key {
	case KeyAnthropicAPIKey, KeyShopifyAccessToken, KeyShopifyStoreURL, KeySecretKey, KeyDatabaseURI:
		return true
	}
	return false
}

// WithOverrides returns a copy of c with database-backed values applied.
// Unknown keys are ignored here; they still reach the process environment.
func (c *Config) WithOverrides(values map[string]string) *Config {
	next := *c
	for key, value := range values {
		switch key {
		case KeyAnthropicAPIKey:
			next.AnthropicAPIKey = value
		case KeyGeminiAPIKey:
			next.GeminiAPIKey = value
		case KeyShopifyAccessToken:
			next.ShopifyAccessToken = value
		case KeyShopifyStoreURL:
			next.ShopifyStoreURL = normalizeStoreURL(value)
		case KeySecretKey:
			next.SecretKey = value
		case KeyDatabaseURI:
			// Takes effect on the next process start; the open pool is not swapped.
			next.DatabaseURI = value
		}
	}
	return &next
}

func normalizeStoreURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
