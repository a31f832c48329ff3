// Package config loads runtime configuration for the auth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with GOPHAUTH_.
//  4. Command-line flags, which override everything above.
//
// # JSON schema
//
// Durations accept strings such as "60s" or integer nanoseconds:
//
//	{
//	  "provider": "rest",
//	  "api_key": "AIza...",
//	  "auth_base_url": "https://identitytoolkit.googleapis.com",
//	  "request_timeout": "10s",
//	  "phone_auto_retrieval_timeout": "60s",
//	  "cache_backend": "sqlite",
//	  "cache_dsn": "auth.db"
//	}
package config
