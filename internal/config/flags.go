package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var knownFlags = []string{
	"-provider", "-k", "-a", "-t",
	"-cache", "-cache-dsn", "-redis",
	"-log-format", "-log-level", "-otel",
}

// parseFlags overlays cfg with command-line flags:
//
//	-provider string    identity backend: rest | memory
//	-k string           provider API key
//	-a string           provider base URL
//	-t int              phone auto-retrieval timeout (seconds)
//	-cache string       cache backend: sqlite | memory | redis
//	-cache-dsn string   SQLite path for the sqlite cache
//	-redis string       Redis URL for the redis cache
//	-log-format string  text | json | zap
//	-log-level string   debug | info | warn | error
//	-otel string        OTLP/HTTP traces endpoint
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "identity backend (rest|memory)")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "provider API key")
	fs.StringVar(&cfg.AuthBaseURL, "a", cfg.AuthBaseURL, "provider base URL")
	phoneTimeout := fs.Int("t", int(cfg.PhoneAutoRetrievalTimeout.Seconds()), "phone auto-retrieval timeout (in seconds)")
	fs.StringVar(&cfg.CacheBackend, "cache", cfg.CacheBackend, "cache backend (sqlite|memory|redis)")
	fs.StringVar(&cfg.CacheDSN, "cache-dsn", cfg.CacheDSN, "sqlite cache path")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "redis URL")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json|zap)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.OTelEndpoint, "otel", cfg.OTelEndpoint, "OTLP/HTTP traces endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.PhoneAutoRetrievalTimeout = time.Duration(*phoneTimeout) * time.Second
	return nil
}
