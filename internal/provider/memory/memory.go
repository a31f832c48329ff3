// Package memory implements provider.IdentityProvider in process.
//
// It backs unit tests of the auth façade and the "memory" provider mode of
// the CLI. Phone verification can run in auto mode (a fixed code is "sent"
// immediately) or be driven step by step with the Fire* methods.
package memory

import (
	"context"
	"net/mail"
	"regexp"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/broadcast"
	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/google/uuid"
)

const minPasswordLen = 6

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

type account struct {
	user     provider.User
	password string
	disabled bool
}

// PhoneRequest records a VerifyPhoneNumber call.
type PhoneRequest struct {
	PhoneNumber string
	ResendToken *int

	ctx context.Context
	cb  provider.PhoneCallbacks
}

type pendingCode struct {
	phone string
	code  string
}

// Provider is an in-memory identity backend. It is safe for concurrent use.
type Provider struct {
	mu        sync.Mutex
	accounts  map[string]*account // by email
	federated map[string]*account // by id token
	phones    map[string]*account // by phone number
	pending   map[string]pendingCode
	requests  []*PhoneRequest
	current   *provider.User
	resendSeq int

	autoCode  string
	signOutFn func(context.Context) error

	hub *broadcast.Hub[*provider.User]
}

// Option configures a Provider.
type Option func(*Provider)

// WithAutoCode makes VerifyPhoneNumber dispatch code immediately and fire
// OnCodeSent synchronously.
func WithAutoCode(code string) Option {
	return func(p *Provider) { p.autoCode = code }
}

// WithSignOutError makes SignOut fail with err.
func WithSignOutError(err error) Option {
	return func(p *Provider) {
		p.signOutFn = func(context.Context) error { return err }
	}
}

// New returns an empty provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		accounts:  make(map[string]*account),
		federated: make(map[string]*account),
		phones:    make(map[string]*account),
		pending:   make(map[string]pendingCode),
		hub:       broadcast.New[*provider.User](8),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func copyUser(u *provider.User) *provider.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// setCurrentLocked updates the session and publishes it. Callers hold p.mu.
func (p *Provider) setCurrentLocked(u *provider.User) {
	p.current = copyUser(u)
	p.hub.Publish(copyUser(u))
}

func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*provider.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, provider.NewError("invalid-email", err.Error())
	}
	if len(password) < minPasswordLen {
		return nil, provider.NewError("weak-password", "password should be at least 6 characters")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[email]; ok {
		return nil, provider.NewError("email-already-in-use", "")
	}
	acc := &account{
		user:     provider.User{UID: uuid.NewString(), Email: email},
		password: password,
	}
	p.accounts[email] = acc
	p.setCurrentLocked(&acc.user)
	return copyUser(&acc.user), nil
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*provider.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, provider.NewError("invalid-email", err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[email]
	switch {
	case !ok:
		return nil, provider.NewError("user-not-found", "")
	case acc.disabled:
		return nil, provider.NewError("user-disabled", "")
	case acc.password != password:
		return nil, provider.NewError("wrong-password", "")
	}
	p.setCurrentLocked(&acc.user)
	return copyUser(&acc.user), nil
}

func (p *Provider) SignInWithCredential(ctx context.Context, cred provider.Credential) (*provider.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch c := cred.(type) {
	case provider.FederatedCredential:
		return p.signInFederated(c)
	case provider.PhoneCredential:
		return p.signInPhone(c)
	default:
		return nil, provider.NewError("operation-not-allowed", "unsupported credential")
	}
}

func (p *Provider) signInFederated(c provider.FederatedCredential) (*provider.User, error) {
	if c.IDToken == "" && c.AccessToken == "" {
		return nil, provider.NewError("invalid-credential", "empty token")
	}
	key := c.IDToken
	if key == "" {
		key = c.AccessToken
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.federated[key]
	if !ok {
		acc = &account{user: provider.User{UID: uuid.NewString()}}
		p.federated[key] = acc
	}
	if acc.disabled {
		return nil, provider.NewError("user-disabled", "")
	}
	if acc.user.Email != "" {
		if pw, ok := p.accounts[acc.user.Email]; ok && pw.user.UID != acc.user.UID {
			return nil, provider.NewError("account-exists-with-different-credential", "")
		}
	}
	p.setCurrentLocked(&acc.user)
	return copyUser(&acc.user), nil
}

func (p *Provider) signInPhone(c provider.PhoneCredential) (*provider.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pc, ok := p.pending[c.VerificationID]
	switch {
	case c.VerificationID == "" || !ok:
		return nil, provider.NewError("invalid-verification-id", "")
	case pc.code != c.SMSCode:
		return nil, provider.NewError("invalid-verification-code", "")
	}

	acc, ok := p.phones[pc.phone]
	if !ok {
		acc = &account{user: provider.User{UID: uuid.NewString(), PhoneNumber: pc.phone}}
		p.phones[pc.phone] = acc
	}
	if acc.disabled {
		return nil, provider.NewError("user-disabled", "")
	}
	delete(p.pending, c.VerificationID)
	p.setCurrentLocked(&acc.user)
	return copyUser(&acc.user), nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	if p.signOutFn != nil {
		if err := p.signOutFn(ctx); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setCurrentLocked(nil)
	return nil
}

func (p *Provider) AuthStateChanges(ctx context.Context) <-chan *provider.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hub.SubscribeWith(ctx, copyUser(p.current))
}

// VerifyPhoneNumber records the request. Invalid numbers fail through
// OnFailed; in auto mode OnCodeSent fires before it returns.
func (p *Provider) VerifyPhoneNumber(ctx context.Context, phoneNumber string, resendToken *int, cb provider.PhoneCallbacks) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := &PhoneRequest{PhoneNumber: phoneNumber, ResendToken: resendToken, ctx: ctx, cb: cb}

	p.mu.Lock()
	p.requests = append(p.requests, req)
	auto := p.autoCode
	p.mu.Unlock()

	if !e164.MatchString(phoneNumber) {
		if cb.OnFailed != nil {
			cb.OnFailed(provider.NewError("invalid-phone-number", phoneNumber))
		}
		return nil
	}
	if auto != "" {
		p.FireCodeSent(uuid.NewString(), auto)
	}
	return nil
}
