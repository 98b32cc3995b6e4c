package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (HUSSAM_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (HUSSAM_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	// RedisAddr enables the Redis session store. Empty keeps sessions in
	// process memory (single-node development only).
	RedisAddr     string `default:"" usage:"Redis address for session storage (host:port)" flag:"redis-addr"`
	RedisPassword string `default:"" usage:"Redis password" flag:"redis-password"`

	// KafkaBrokers enables order event publishing. Empty disables it.
	KafkaBrokers []string `usage:"Kafka broker addresses for order events" flag:"kafka-brokers"`

	// SecretPepper is mixed into password hashes and session token keys.
	SecretPepper string `usage:"HMAC pepper for password and token hashing (HUSSAM_SECRET_PEPPER)" flag:"secret-pepper"`

	Assistant AssistantConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// AssistantConfig controls the AI shopping assistant proxy.
type AssistantConfig struct {
	APIKey  string `default:"" usage:"Generative language API key; empty disables the assistant" flag:"assistant-api-key"`
	BaseURL string `default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:streamGenerateContent" usage:"Assistant upstream endpoint" flag:"assistant-base-url"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "HUSSAM",
		Files:     []string{"config.yaml", "/etc/hussam/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set HUSSAM_DATABASE_URL or DATABASE_URL")
	}
	if cfg.SecretPepper == "" {
		return nil, errors.New("secret pepper is required: set HUSSAM_SECRET_PEPPER")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's HUSSAM_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
