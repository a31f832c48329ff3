package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/auth"
	"github.com/dmitrijs2005/gophauth/internal/cache"
	"github.com/dmitrijs2005/gophauth/internal/config"
	"github.com/dmitrijs2005/gophauth/internal/federated"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/dmitrijs2005/gophauth/internal/provider/memory"
	"github.com/dmitrijs2005/gophauth/internal/provider/rest"
	"github.com/dmitrijs2005/gophauth/internal/storage"
	"golang.org/x/oauth2"
)

// memoryTestCode is the SMS code of the offline provider.
const memoryTestCode = "123456"

// NewAppFromConfig wires the provider, cache and federated client selected
// by cfg into an App. The returned cleanup releases them.
func NewAppFromConfig(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, log logging.Logger) (*App, func(), error) {
	if log == nil {
		log = logging.Nop()
	}
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn(ctx, "cleanup failed", "error", err)
			}
		}
	}

	c, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if closeCache != nil {
		closers = append(closers, closeCache)
	}

	p, fed, err := newProvider(cfg, out, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cl, ok := p.(io.Closer); ok {
		closers = append(closers, cl.Close)
	}

	repo := auth.New(p, fed, c, auth.WithLogger(log))
	closers = append(closers, repo.Close)

	return NewApp(repo, in, out, log), cleanup, nil
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, func() error, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return cache.NewMemory(), nil, nil
	case config.CacheSQLite:
		db, err := storage.Open(ctx, cfg.CacheDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache database: %w", err)
		}
		return cache.NewSQLite(db), db.Close, nil
	case config.CacheRedis:
		rdb, err := cache.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedis(rdb, "gophauth:", 0), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

func newProvider(cfg *config.Config, out io.Writer, log logging.Logger) (provider.IdentityProvider, federated.Client, error) {
	switch cfg.Provider {
	case config.ProviderMemory:
		fed := &federated.Static{Credential: provider.FederatedCredential{
			Provider: provider.GoogleProviderID,
			IDToken:  "offline-google-user",
		}}
		return memory.New(memory.WithAutoCode(memoryTestCode)), fed, nil
	case config.ProviderREST:
		p, err := rest.New(rest.Config{
			BaseURL:                   cfg.AuthBaseURL,
			APIKey:                    cfg.APIKey,
			RequestTimeout:            cfg.RequestTimeout,
			RetryMaxElapsed:           cfg.RetryMaxElapsed,
			BreakerMaxFailures:        cfg.BreakerMaxFailures,
			BreakerOpenTimeout:        cfg.BreakerOpenTimeout,
			PhoneAutoRetrievalTimeout: cfg.PhoneAutoRetrievalTimeout,
			Logger:                    log,
		})
		if err != nil {
			return nil, nil, err
		}
		fed := federated.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, oauth2.Endpoint{}, DevicePrompt(out), log)
		return p, fed, nil
	default:
		return nil, nil, errors.New("unknown provider " + cfg.Provider)
	}
}
