package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dmitrijs2005/gophauth/internal/broadcast"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/sony/gobreaker"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string

	// RequestTimeout bounds a single HTTP attempt.
	RequestTimeout time.Duration

	// RetryMaxElapsed bounds all retries of one call. Zero disables retries.
	RetryMaxElapsed time.Duration

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	// PhoneAutoRetrievalTimeout is how long after a code was sent OnTimeout fires.
	PhoneAutoRetrievalTimeout time.Duration

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
	Logger     logging.Logger
}

type session struct {
	user         provider.User
	idToken      string
	refreshToken string
}

// Client talks to the Identity Toolkit REST API.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logging.Logger

	mu        sync.Mutex
	session   *session
	resendSeq int

	hub *broadcast.Hub[*provider.User]
}

var _ provider.IdentityProvider = (*Client)(nil)

// New builds a Client. BaseURL and APIKey are required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rest: base url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("rest: api key is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("rest: invalid base url: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}

	c := &Client{
		cfg:  cfg,
		http: hc,
		log:  cfg.Logger.With("component", "rest-provider"),
		hub:  broadcast.New[*provider.User](8),
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "identity-provider",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		// coded rejections mean the backend is healthy
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var re *retryableError
			if errors.As(err, &re) {
				return false
			}
			_, coded := provider.CodeOf(err)
			return coded || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return c, nil
}

// Close ends all auth-state subscriptions.
func (c *Client) Close() error {
	c.hub.Close()
	return nil
}

type retryableError struct {
	status int
	err    error
}

func (e *retryableError) Error() string {
	if e.status == 0 {
		return e.err.Error()
	}
	return fmt.Sprintf("http %d: %v", e.status, e.err)
}

func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/v1/accounts:%s?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), method, url.QueryEscape(c.cfg.APIKey))
}

// attempt performs one HTTP round trip. Errors worth retrying are returned
// as *retryableError, everything else is wrapped with backoff.Permanent.
func (c *Client) attempt(ctx context.Context, method string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return &retryableError{err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{status: resp.StatusCode, err: err}
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return &retryableError{status: resp.StatusCode, err: decodeError(resp.StatusCode, payload)}
	case resp.StatusCode >= 400:
		return backoff.Permanent(decodeError(resp.StatusCode, payload))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode %s response: %w", method, err))
	}
	return nil
}

// call POSTs in to accounts:<method> and decodes the response into out.
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	opts := []backoff.RetryOption{backoff.WithBackOff(backoff.NewExponentialBackOff())}
	if c.cfg.RetryMaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(c.cfg.RetryMaxElapsed))
	} else {
		opts = append(opts, backoff.WithMaxTries(1))
	}

	_, err = c.breaker.Execute(func() (any, error) {
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, c.attempt(ctx, method, body, out)
		}, opts...)
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		return nil, err
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}

	var re *retryableError
	if errors.As(err, &re) {
		c.log.Warn(ctx, "provider call failed after retries", "method", method, "error", err)
		return fmt.Errorf("%w: %s: %w", provider.ErrUnavailable, method, err)
	}
	return err
}
