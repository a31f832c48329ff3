package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cache"
	"github.com/dmitrijs2005/gophauth/internal/failures"
	"github.com/dmitrijs2005/gophauth/internal/federated"
	"github.com/dmitrijs2005/gophauth/internal/models"
	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/dmitrijs2005/gophauth/internal/provider/memory"
	"github.com/dmitrijs2005/gophauth/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fixture struct {
	repo     Repository
	provider *memory.Provider
	fed      *federated.Static
	cache    cache.Cache
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()
	f := &fixture{
		provider: memory.New(opts...),
		fed:      &federated.Static{Credential: provider.FederatedCredential{Provider: provider.GoogleProviderID, IDToken: "google-token"}},
		cache:    cache.NewMemory(),
	}
	f.repo = New(f.provider, f.fed, f.cache)
	t.Cleanup(func() { _ = f.repo.Close() })
	return f
}

func recv(t *testing.T, ch <-chan models.User) models.User {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "user stream closed")
		return u
	case <-time.After(time.Second):
		t.Fatal("no user emitted")
		return models.User{}
	}
}

func failureOf(t *testing.T, err error) *failures.Failure {
	t.Helper()
	var f *failures.Failure
	require.True(t, errors.As(err, &f), "expected *failures.Failure, got %T: %v", err, err)
	return f
}

func TestCurrentUser_EmptyBeforeWrite(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, models.EmptyUser, f.repo.CurrentUser(context.Background()))
}

func TestCurrentUser_ReturnsLastWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	want := models.User{ID: "1", Email: "a@b.com"}
	require.NoError(t, f.cache.Write(ctx, cache.UserKey, want))
	assert.Equal(t, want, f.repo.CurrentUser(ctx))

	want2 := models.User{ID: "2", Phone: "+15550001234"}
	require.NoError(t, f.cache.Write(ctx, cache.UserKey, want2))
	assert.Equal(t, want2, f.repo.CurrentUser(ctx))
}

func TestUserStream_WritesCacheBeforeEmitting(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := f.repo.User(ctx)
	assert.Equal(t, models.EmptyUser, recv(t, ch))

	_, err := f.provider.CreateAccount(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	u := recv(t, ch)
	assert.Equal(t, "a@b.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, u, f.repo.CurrentUser(ctx), "cache must hold the emitted user")

	require.NoError(t, f.provider.SignOut(ctx))
	assert.Equal(t, models.EmptyUser, recv(t, ch))
	assert.Equal(t, models.EmptyUser, f.repo.CurrentUser(ctx))
}

func TestUserStream_MultipleSubscribers(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := f.repo.User(ctx)
	b := f.repo.User(ctx)
	recv(t, a)
	recv(t, b)

	require.NoError(t, f.repo.SignUp(ctx, "a@b.com", "secret1"))

	ua, ub := recv(t, a), recv(t, b)
	assert.Equal(t, "a@b.com", ua.Email)
	assert.Equal(t, ua, ub)
}

func TestUserStream_ClosesWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := f.repo.User(ctx)
	recv(t, ch)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.SignUp(ctx, "a@b.com", "secret1"))
	assert.Equal(t, "a@b.com", f.repo.CurrentUser(ctx).Email, "cache is fresh without subscribers")

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"duplicate", "a@b.com", "secret1", "email-already-in-use"},
		{"bad email", "nope", "secret1", "invalid-email"},
		{"weak password", "c@d.com", "123", "weak-password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.repo.SignUp(ctx, tt.email, tt.password)
			fl := failureOf(t, err)
			assert.Equal(t, failures.FromCode(failures.SignUp, tt.code), fl)
			assert.True(t, fl.Known())
		})
	}
}

func TestLogInWithEmailAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.CreateAccount(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.provider.SignOut(ctx))

	require.NoError(t, f.repo.LogInWithEmailAndPassword(ctx, "a@b.com", "secret1"))
	assert.Equal(t, "a@b.com", f.repo.CurrentUser(ctx).Email)

	fl := failureOf(t, f.repo.LogInWithEmailAndPassword(ctx, "a@b.com", "bad"))
	assert.Equal(t, failures.LogInEmail, fl.Family)
	assert.Equal(t, "wrong-password", fl.Code)

	fl = failureOf(t, f.repo.LogInWithEmailAndPassword(ctx, "x@b.com", "secret1"))
	assert.Equal(t, "user-not-found", fl.Code)

	f.provider.Disable("a@b.com")
	fl = failureOf(t, f.repo.LogInWithEmailAndPassword(ctx, "a@b.com", "secret1"))
	assert.Equal(t, "user-disabled", fl.Code)
}

type brokenProvider struct {
	*memory.Provider
}

func (brokenProvider) SignInWithPassword(context.Context, string, string) (*provider.User, error) {
	return nil, provider.ErrUnavailable
}

func TestLogIn_NonCodedErrorIsUnknown(t *testing.T) {
	repo := New(brokenProvider{memory.New()}, &federated.Static{}, cache.NewMemory())
	defer repo.Close()

	fl := failureOf(t, repo.LogInWithEmailAndPassword(context.Background(), "a@b.com", "secret1"))
	assert.Equal(t, failures.Unknown(failures.LogInEmail), fl)
	assert.Equal(t, failures.DefaultMessage, fl.Message)
}

func TestLogInWithGoogle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider.LinkFederated("google-token", provider.User{UID: "g-1", DisplayName: "Ada", PhotoURL: "https://img"})

	require.NoError(t, f.repo.LogInWithGoogle(ctx))
	assert.Equal(t, models.User{ID: "g-1", Name: "Ada", Photo: "https://img"}, f.repo.CurrentUser(ctx))
}

func TestLogInWithGoogle_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fed.SignInErr = federated.ErrCancelled
	fl := failureOf(t, f.repo.LogInWithGoogle(ctx))
	assert.Equal(t, failures.Unknown(failures.LogInFederated), fl)

	f.fed.SignInErr = nil
	f.fed.Credential = provider.FederatedCredential{Provider: provider.GoogleProviderID}
	fl = failureOf(t, f.repo.LogInWithGoogle(ctx))
	assert.Equal(t, failures.FromCode(failures.LogInFederated, "invalid-credential"), fl)

	_, err := f.provider.CreateAccount(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	f.provider.LinkFederated("other-token", provider.User{UID: "g-2", Email: "a@b.com"})
	f.fed.Credential = provider.FederatedCredential{Provider: provider.GoogleProviderID, IDToken: "other-token"}
	fl = failureOf(t, f.repo.LogInWithGoogle(ctx))
	assert.Equal(t, "account-exists-with-different-credential", fl.Code)
	assert.True(t, fl.Known())
}

func TestPhoneLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.repo.VerifyOTP(ctx, "123456")
	assert.ErrorIs(t, err, failures.ErrCodeNotSent)

	require.NoError(t, f.repo.LogInWithPhoneNumber(ctx, "+1", "5550001234"))
	events := f.repo.PhoneEvents()
	require.NotNil(t, events)

	require.True(t, f.provider.FireCodeSent("vid-1", "123456"))
	ev := <-events
	assert.True(t, ev.CodeSent)
	assert.Equal(t, "vid-1", ev.VerificationID)

	ok, err := f.repo.VerifyOTP(ctx, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		return f.repo.CurrentUser(ctx).Phone == "+15550001234"
	}, time.Second, 10*time.Millisecond)
}

func TestPhoneLogin_CurrentUserAfterStream(t *testing.T) {
	f := newFixture(t, memory.WithAutoCode("123456"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users := f.repo.User(ctx)
	recv(t, users)

	require.NoError(t, f.repo.LogInWithPhoneNumber(ctx, "+1", "5550001234"))
	ok, err := f.repo.VerifyOTP(ctx, "123456")
	require.NoError(t, err)
	require.True(t, ok)

	u := recv(t, users)
	assert.Equal(t, "+15550001234", u.Phone)
	assert.Equal(t, u, f.repo.CurrentUser(ctx))
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	f := newFixture(t, memory.WithAutoCode("123456"))
	ctx := context.Background()

	require.NoError(t, f.repo.LogInWithPhoneNumber(ctx, "+1", "5550001234"))
	ok, err := f.repo.VerifyOTP(ctx, "000000")
	assert.False(t, ok)
	fl := failureOf(t, err)
	assert.Equal(t, failures.LogInPhone, fl.Family)
	assert.Equal(t, failures.DefaultMessage, fl.Message)
}

func TestLogOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.SignUp(ctx, "a@b.com", "secret1"))

	require.NoError(t, f.repo.LogOut(ctx))
	assert.Nil(t, f.provider.Current())
	assert.Equal(t, models.EmptyUser, f.repo.CurrentUser(ctx))

	_, outs := f.fed.Calls()
	assert.Equal(t, 1, outs)
}

func TestLogOut_EitherSideFails(t *testing.T) {
	providerErr := errors.New("provider down")
	fedErr := errors.New("google down")

	tests := []struct {
		name        string
		providerErr error
		fedErr      error
	}{
		{"provider", providerErr, nil},
		{"federated", nil, fedErr},
		{"both", providerErr, fedErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []memory.Option
			if tt.providerErr != nil {
				opts = append(opts, memory.WithSignOutError(tt.providerErr))
			}
			ctx := context.Background()
			p := memory.New(opts...)
			repo := New(p, &federated.Static{SignOutErr: tt.fedErr}, cache.NewMemory())
			defer repo.Close()
			require.NoError(t, repo.SignUp(ctx, "a@b.com", "secret1"))

			err := repo.LogOut(ctx)
			require.ErrorIs(t, err, failures.ErrLogOut)
			if tt.providerErr != nil {
				assert.ErrorIs(t, err, tt.providerErr)
			}
			if tt.fedErr != nil {
				assert.ErrorIs(t, err, tt.fedErr)
			}

			var fl *failures.Failure
			assert.False(t, errors.As(err, &fl), "logout failure carries no code")

			if tt.providerErr == nil {
				assert.Nil(t, p.Current())
				assert.Equal(t, models.EmptyUser, repo.CurrentUser(ctx))
			} else {
				assert.Equal(t, "a@b.com", repo.CurrentUser(ctx).Email)
			}
		})
	}
}

func TestSQLiteCacheBackedRepository(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, "file:authrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	p := memory.New()
	repo := New(p, &federated.Static{}, cache.NewSQLite(db))
	defer repo.Close()

	assert.Equal(t, models.EmptyUser, repo.CurrentUser(ctx))
	require.NoError(t, repo.SignUp(ctx, "a@b.com", "secret1"))
	assert.Equal(t, "a@b.com", repo.CurrentUser(ctx).Email)
}

func TestSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	repo := New(memory.New(), &federated.Static{}, cache.NewMemory(), WithTracer(tp.Tracer("test")))
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.SignUp(ctx, "a@b.com", "secret1"))
	require.Error(t, repo.LogInWithEmailAndPassword(ctx, "a@b.com", "bad"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "auth.SignUp", spans[0].Name())
	assert.Equal(t, "auth.LogInWithEmailAndPassword", spans[1].Name())
	assert.Equal(t, "Error", spans[1].Status().Code.String())
}
