// Package phone coordinates the callback-driven phone OTP flow of an identity
// provider into a single event stream per flow.
//
// A flow starts with Start and emits models.PhoneAuthCred values in the order
// the provider delivers its callbacks. The stream closes on terminal success
// (auto-verification or a successful Verify), on terminal failure (delivered as
// an event with Err set), when a newer flow supersedes it, or on Close.
package phone

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/failures"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/models"
	"github.com/dmitrijs2005/gophauth/internal/provider"
)

const defaultBuffer = 8

// Coordinator owns at most one active flow. It is safe for concurrent use.
type Coordinator struct {
	provider provider.IdentityProvider
	log      logging.Logger
	buffer   int
	signedIn func(context.Context, *provider.User)

	mu     sync.Mutex
	flow   *flow
	closed bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithBuffer sets how many undelivered events a flow holds before the
// provider callback blocks.
func WithBuffer(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithSignedIn registers fn to run after every phone sign-in, whether it
// came from Verify or from auto-verification.
func WithSignedIn(fn func(context.Context, *provider.User)) Option {
	return func(c *Coordinator) { c.signedIn = fn }
}

// New returns a Coordinator over p.
func New(p provider.IdentityProvider, opts ...Option) *Coordinator {
	c := &Coordinator{provider: p, log: logging.Nop(), buffer: defaultBuffer}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "phone")
	return c
}

// PhoneNumber joins a country calling code and a national number into E.164
// form. Spaces, dashes and brackets are dropped and a missing "+" is added.
// The country code is always prepended, even when number already starts
// with it.
func PhoneNumber(countryCode, number string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch r {
			case ' ', '-', '(', ')', '.', '+':
				return -1
			}
			return r
		}, s)
	}
	return "+" + clean(countryCode) + clean(number)
}

// Start begins a new flow for the number and returns its event stream. Any
// previous flow is cancelled first and its latest resend token is passed to
// the provider.
//
// Verification failures are not returned here: they arrive as the terminal
// event of the stream. The error is non-nil only when the request could not
// be issued at all, in which case the stream is already closed.
func (c *Coordinator) Start(ctx context.Context, countryCode, number string) (<-chan models.PhoneAuthCred, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, failures.Unknown(failures.LogInPhone)
	}
	prev := c.flow
	var resend *int
	if prev != nil {
		resend = prev.resendToken()
	}
	f := newFlow(ctx, c.buffer)
	c.flow = f
	c.mu.Unlock()

	if prev != nil {
		prev.close()
		c.log.Debug(ctx, "previous phone flow superseded", "resend", resend != nil)
	}

	phoneNumber := PhoneNumber(countryCode, number)
	c.log.Info(ctx, "phone verification requested", "resend", resend != nil)

	err := c.provider.VerifyPhoneNumber(f.ctx, phoneNumber, resend, c.callbacks(f))
	if err != nil {
		f.close()
		return f.events, failures.FromError(failures.LogInPhone, err)
	}
	return f.events, nil
}

// Events returns the stream of the current flow, or nil when none was
// started.
func (c *Coordinator) Events() <-chan models.PhoneAuthCred {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow == nil {
		return nil
	}
	return c.flow.events
}

// ResendToken returns the latest resend token of the current flow.
func (c *Coordinator) ResendToken() *int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow == nil {
		return nil
	}
	return c.flow.resendToken()
}

// Verify exchanges smsCode for a session using the verification id of the
// most recent non-failure event. It fails with failures.ErrCodeNotSent when
// the current flow has emitted no such event. On success the flow ends.
func (c *Coordinator) Verify(ctx context.Context, smsCode string) (bool, error) {
	c.mu.Lock()
	f := c.flow
	c.mu.Unlock()

	if f == nil {
		return false, failures.ErrCodeNotSent
	}
	last, ok := f.lastEvent()
	if !ok {
		return false, failures.ErrCodeNotSent
	}

	u, err := c.provider.SignInWithCredential(ctx, provider.PhoneCredential{
		VerificationID: last.VerificationID,
		SMSCode:        smsCode,
	})
	if err != nil {
		c.log.Warn(ctx, "otp verification failed", "error", err)
		return false, failures.FromError(failures.LogInPhone, err)
	}

	f.close()
	c.log.Info(ctx, "otp verified")
	if u != nil && c.signedIn != nil {
		c.signedIn(ctx, u)
	}
	return u != nil, nil
}

// Cancel ends the current flow, if any.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	f := c.flow
	c.mu.Unlock()
	if f != nil {
		f.close()
	}
}

// Close cancels the current flow and rejects further Start calls.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	c.closed = true
	f := c.flow
	c.mu.Unlock()
	if f != nil {
		f.close()
	}
	return nil
}

// callbacks binds provider callbacks to f. Once f is closed they do nothing.
func (c *Coordinator) callbacks(f *flow) provider.PhoneCallbacks {
	return provider.PhoneCallbacks{
		OnCodeSent: func(verificationID string, resendToken *int) {
			f.emit(models.PhoneAuthCred{
				VerificationID: verificationID,
				CodeSent:       true,
				ResendToken:    resendToken,
			})
		},
		OnTimeout: func(verificationID string) {
			f.emit(models.PhoneAuthCred{VerificationID: verificationID, TimedOut: true})
		},
		OnFailed: func(err error) {
			c.log.Warn(f.ctx, "phone verification failed", "error", err)
			f.fail(failures.FromError(failures.LogInPhone, err))
		},
		OnAutoVerified: func(cred provider.PhoneCredential) {
			if !f.emit(models.PhoneAuthCred{SMSCode: cred.SMSCode, VerificationID: cred.VerificationID}) {
				return
			}
			u, err := c.provider.SignInWithCredential(f.ctx, cred)
			if err != nil {
				c.log.Warn(f.ctx, "auto-verified sign-in failed", "error", err)
				f.fail(failures.FromError(failures.LogInPhone, err))
				return
			}
			c.log.Info(f.ctx, "phone auto-verified")
			if u != nil && c.signedIn != nil {
				c.signedIn(f.ctx, u)
			}
			f.close()
		},
	}
}
