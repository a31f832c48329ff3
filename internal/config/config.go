package config

import (
	"fmt"
	"time"
)

// Provider backends.
const (
	ProviderREST   = "rest"
	ProviderMemory = "memory"
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds runtime settings.
type Config struct {
	Provider       string        `env:"PROVIDER"`
	APIKey         string        `env:"API_KEY"`
	AuthBaseURL    string        `env:"AUTH_BASE_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	RetryMaxElapsed    time.Duration `env:"RETRY_MAX_ELAPSED"`
	BreakerMaxFailures uint32        `env:"BREAKER_MAX_FAILURES"`
	BreakerOpenTimeout time.Duration `env:"BREAKER_OPEN_TIMEOUT"`

	PhoneAutoRetrievalTimeout time.Duration `env:"PHONE_AUTO_RETRIEVAL_TIMEOUT"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	CacheBackend string `env:"CACHE_BACKEND"`
	CacheDSN     string `env:"CACHE_DSN"`
	RedisURL     string `env:"REDIS_URL"`

	LogFormat    string `env:"LOG_FORMAT"`
	LogLevel     string `env:"LOG_LEVEL"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.Provider = ProviderREST
	c.AuthBaseURL = "https://identitytoolkit.googleapis.com"
	c.RequestTimeout = 10 * time.Second
	c.RetryMaxElapsed = 15 * time.Second
	c.BreakerMaxFailures = 5
	c.BreakerOpenTimeout = 30 * time.Second
	c.PhoneAutoRetrievalTimeout = 60 * time.Second
	c.CacheBackend = CacheSQLite
	c.CacheDSN = "auth.db"
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// Validate reports inconsistent settings.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMemory:
	case ProviderREST:
		if c.APIKey == "" {
			return fmt.Errorf("config: api key is required for the %q provider", ProviderREST)
		}
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}

	switch c.CacheBackend {
	case CacheSQLite:
		if c.CacheDSN == "" {
			return fmt.Errorf("config: cache dsn is required for the %q cache", CacheSQLite)
		}
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: redis url is required for the %q cache", CacheRedis)
		}
	case CacheMemory:
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.CacheBackend)
	}
	return nil
}

// LoadConfig builds a Config from defaults, JSON, environment and flags,
// in that order.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
