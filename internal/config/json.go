package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// jsonConfig is the on-disk shape. Pointer fields distinguish "absent" from
// zero so a partial file only overrides what it names.
type jsonConfig struct {
	Provider       *string         `json:"provider"`
	APIKey         *string         `json:"api_key"`
	AuthBaseURL    *string         `json:"auth_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`

	RetryMaxElapsed    *timex.Duration `json:"retry_max_elapsed"`
	BreakerMaxFailures *uint32         `json:"breaker_max_failures"`
	BreakerOpenTimeout *timex.Duration `json:"breaker_open_timeout"`

	PhoneAutoRetrievalTimeout *timex.Duration `json:"phone_auto_retrieval_timeout"`

	GoogleClientID     *string `json:"google_client_id"`
	GoogleClientSecret *string `json:"google_client_secret"`

	CacheBackend *string `json:"cache_backend"`
	CacheDSN     *string `json:"cache_dsn"`
	RedisURL     *string `json:"redis_url"`

	LogFormat    *string `json:"log_format"`
	LogLevel     *string `json:"log_level"`
	OTelEndpoint *string `json:"otel_endpoint"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config) error {
	path := flagx.JSONConfigFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.Provider, jc.Provider)
	setString(&cfg.APIKey, jc.APIKey)
	setString(&cfg.AuthBaseURL, jc.AuthBaseURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.RetryMaxElapsed, jc.RetryMaxElapsed)
	if jc.BreakerMaxFailures != nil {
		cfg.BreakerMaxFailures = *jc.BreakerMaxFailures
	}
	setDuration(&cfg.BreakerOpenTimeout, jc.BreakerOpenTimeout)
	setDuration(&cfg.PhoneAutoRetrievalTimeout, jc.PhoneAutoRetrievalTimeout)
	setString(&cfg.GoogleClientID, jc.GoogleClientID)
	setString(&cfg.GoogleClientSecret, jc.GoogleClientSecret)
	setString(&cfg.CacheBackend, jc.CacheBackend)
	setString(&cfg.CacheDSN, jc.CacheDSN)
	setString(&cfg.RedisURL, jc.RedisURL)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.OTelEndpoint, jc.OTelEndpoint)
	return nil
}
