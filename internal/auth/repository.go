package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/cache"
	"github.com/dmitrijs2005/gophauth/internal/failures"
	"github.com/dmitrijs2005/gophauth/internal/federated"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/models"
	"github.com/dmitrijs2005/gophauth/internal/phone"
	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/dmitrijs2005/gophauth/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Repository defines the authentication operations for front ends.
//
// Contract:
//   - User streams the mapped auth state, writing each value to the cache
//     before it is delivered. Every call is an independent subscription.
//   - CurrentUser returns the last cached user or models.EmptyUser.
//   - SignUp, LogInWithEmailAndPassword, LogInWithGoogle and VerifyOTP fail
//     with a *failures.Failure of their family.
//   - LogInWithPhoneNumber starts a phone flow whose events are read from
//     PhoneEvents. Verification failures arrive on that stream.
//   - LogOut signs out of the provider and the federated client at once and
//     fails with failures.ErrLogOut if either does.
type Repository interface {
	User(ctx context.Context) <-chan models.User
	CurrentUser(ctx context.Context) models.User

	SignUp(ctx context.Context, email, password string) error
	LogInWithEmailAndPassword(ctx context.Context, email, password string) error
	LogInWithGoogle(ctx context.Context) error
	LogInWithPhoneNumber(ctx context.Context, countryCode, phoneNumber string) error
	VerifyOTP(ctx context.Context, smsCode string) (bool, error)
	LogOut(ctx context.Context) error

	PhoneEvents() <-chan models.PhoneAuthCred
	Close() error
}

type repository struct {
	provider  provider.IdentityProvider
	federated federated.Client
	cache     cache.Cache
	phone     *phone.Coordinator
	log       logging.Logger
	tracer    trace.Tracer

	closeOnce sync.Once
}

// Option configures the repository.
type Option func(*repository)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *repository) { r.log = l }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *repository) { r.tracer = t }
}

// New builds a Repository over its collaborators.
func New(p provider.IdentityProvider, fc federated.Client, c cache.Cache, opts ...Option) Repository {
	r := &repository{
		provider:  p,
		federated: fc,
		cache:     c,
		log:       logging.Nop(),
		tracer:    telemetry.Tracer(),
	}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.With("component", "auth")
	r.phone = phone.New(p,
		phone.WithLogger(r.log),
		phone.WithSignedIn(func(ctx context.Context, u *provider.User) {
			r.signedIn(ctx, provider.PhoneProviderID, u)
		}),
	)
	return r
}

// toUser maps a provider identity; nil means signed out.
func toUser(u *provider.User) models.User {
	if u == nil {
		return models.EmptyUser
	}
	return models.User{
		ID:    u.UID,
		Email: u.Email,
		Name:  u.DisplayName,
		Photo: u.PhotoURL,
		Phone: u.PhoneNumber,
	}
}

func (r *repository) remember(ctx context.Context, u models.User) {
	if err := r.cache.Write(ctx, cache.UserKey, u); err != nil {
		r.log.Warn(ctx, "user cache write failed", "error", err)
	}
}

func (r *repository) User(ctx context.Context) <-chan models.User {
	in := r.provider.AuthStateChanges(ctx)
	out := make(chan models.User)

	go func() {
		defer close(out)
		for pu := range in {
			u := toUser(pu)
			r.remember(ctx, u)
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (r *repository) CurrentUser(ctx context.Context) models.User {
	u, err := r.cache.Read(ctx, cache.UserKey)
	if err != nil {
		r.log.Warn(ctx, "user cache read failed", "error", err)
		return models.EmptyUser
	}
	if u == nil {
		return models.EmptyUser
	}
	return *u
}

func (r *repository) SignUp(ctx context.Context, email, password string) (err error) {
	ctx, span := r.start(ctx, "SignUp")
	defer func() { endSpan(span, err) }()

	u, err := r.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return r.fail(ctx, failures.SignUp, err)
	}
	r.signedIn(ctx, "password", u)
	return nil
}

func (r *repository) LogInWithEmailAndPassword(ctx context.Context, email, password string) (err error) {
	ctx, span := r.start(ctx, "LogInWithEmailAndPassword")
	defer func() { endSpan(span, err) }()

	u, err := r.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return r.fail(ctx, failures.LogInEmail, err)
	}
	r.signedIn(ctx, "password", u)
	return nil
}

func (r *repository) LogInWithGoogle(ctx context.Context) (err error) {
	ctx, span := r.start(ctx, "LogInWithGoogle")
	defer func() { endSpan(span, err) }()

	cred, err := r.federated.SignIn(ctx)
	if err != nil {
		return r.fail(ctx, failures.LogInFederated, err)
	}
	u, err := r.provider.SignInWithCredential(ctx, cred)
	if err != nil {
		return r.fail(ctx, failures.LogInFederated, err)
	}
	r.signedIn(ctx, cred.ProviderID(), u)
	return nil
}

func (r *repository) LogInWithPhoneNumber(ctx context.Context, countryCode, phoneNumber string) (err error) {
	ctx, span := r.start(ctx, "LogInWithPhoneNumber")
	defer func() { endSpan(span, err) }()

	if _, err := r.phone.Start(ctx, countryCode, phoneNumber); err != nil {
		return r.fail(ctx, failures.LogInPhone, err)
	}
	return nil
}

func (r *repository) VerifyOTP(ctx context.Context, smsCode string) (ok bool, err error) {
	ctx, span := r.start(ctx, "VerifyOTP")
	defer func() { endSpan(span, err) }()

	ok, err = r.phone.Verify(ctx, smsCode)
	if err != nil {
		return false, r.fail(ctx, failures.LogInPhone, err)
	}
	return ok, nil
}

func (r *repository) LogOut(ctx context.Context) (err error) {
	ctx, span := r.start(ctx, "LogOut")
	defer func() { endSpan(span, err) }()

	var (
		wg                  sync.WaitGroup
		providerErr, fedErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		providerErr = r.provider.SignOut(ctx)
	}()
	go func() {
		defer wg.Done()
		fedErr = r.federated.SignOut(ctx)
	}()
	wg.Wait()

	// The provider session is what CurrentUser mirrors.
	if providerErr == nil {
		r.phone.Cancel()
		r.remember(ctx, models.EmptyUser)
	}

	if providerErr != nil || fedErr != nil {
		joined := errors.Join(providerErr, fedErr)
		r.log.Warn(ctx, "log out failed", "error", joined)
		return fmt.Errorf("%w: %w", failures.ErrLogOut, joined)
	}

	r.log.Info(ctx, "logged out")
	return nil
}

func (r *repository) PhoneEvents() <-chan models.PhoneAuthCred {
	return r.phone.Events()
}

// Close cancels any phone flow in progress.
func (r *repository) Close() error {
	r.closeOnce.Do(func() {
		_ = r.phone.Close()
	})
	return nil
}

func (r *repository) signedIn(ctx context.Context, method string, u *provider.User) {
	mapped := toUser(u)
	r.remember(ctx, mapped)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("auth.method", method))
	r.log.Info(ctx, "signed in", "method", method, "uid", mapped.ID)
}

func (r *repository) fail(ctx context.Context, family failures.Family, err error) *failures.Failure {
	f := failures.FromError(family, err)
	if f.Known() {
		r.log.Info(ctx, "auth operation rejected", "failure", family.String(), "code", f.Code)
	} else {
		r.log.Warn(ctx, "auth operation failed", "failure", family.String(), "error", err)
	}
	return f
}

func (r *repository) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "auth."+op)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		var f *failures.Failure
		if errors.As(err, &f) {
			span.SetAttributes(attribute.String("auth.failure.code", f.Code))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
