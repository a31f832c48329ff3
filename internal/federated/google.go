package federated

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/provider"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Prompt shows the device-flow instructions to the user.
type Prompt func(verificationURI, userCode string)

// Google signs in with a Google account using the OAuth 2.0 device
// authorization grant, which suits terminals without a browser redirect.
type Google struct {
	cfg    *oauth2.Config
	prompt Prompt
	log    logging.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

var _ Client = (*Google)(nil)

// NewGoogle returns a Google client. endpoint may be the zero value to use
// Google's production endpoints.
func NewGoogle(clientID, clientSecret string, endpoint oauth2.Endpoint, prompt Prompt, log logging.Logger) *Google {
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		prompt: prompt,
		log:    log.With("component", "google-signin"),
	}
}

func (g *Google) SignIn(ctx context.Context) (provider.FederatedCredential, error) {
	if g.cfg.ClientID == "" {
		return provider.FederatedCredential{}, provider.NewError("operation-not-allowed", "google client id is not configured")
	}

	da, err := g.cfg.DeviceAuth(ctx)
	if err != nil {
		return provider.FederatedCredential{}, fmt.Errorf("device authorization: %w", err)
	}

	uri := da.VerificationURIComplete
	if uri == "" {
		uri = da.VerificationURI
	}
	if g.prompt != nil {
		g.prompt(uri, da.UserCode)
	}

	tok, err := g.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return provider.FederatedCredential{}, ErrCancelled
		}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "access_denied" {
			return provider.FederatedCredential{}, ErrCancelled
		}
		return provider.FederatedCredential{}, fmt.Errorf("device token: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)

	g.mu.Lock()
	g.token = tok
	g.mu.Unlock()

	g.log.Debug(ctx, "google sign-in completed", "has_id_token", idToken != "")

	return provider.FederatedCredential{
		Provider:    provider.GoogleProviderID,
		IDToken:     idToken,
		AccessToken: tok.AccessToken,
	}, nil
}

// SignOut drops the cached Google token.
func (g *Google) SignOut(ctx context.Context) error {
	g.mu.Lock()
	g.token = nil
	g.mu.Unlock()
	return nil
}

// Token returns the last token obtained by SignIn, or nil.
func (g *Google) Token() *oauth2.Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}
