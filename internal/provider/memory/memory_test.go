package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, want string) {
	t.Helper()
	code, ok := provider.CodeOf(err)
	require.True(t, ok, "expected coded error, got %v", err)
	require.Equal(t, want, code)
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	p := New()

	u, err := p.CreateAccount(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.UID)
	assert.Equal(t, "ann@example.com", u.Email)

	_, err = p.CreateAccount(ctx, "ann@example.com", "secret1")
	requireCode(t, err, "email-already-in-use")

	_, err = p.CreateAccount(ctx, "not-an-email", "secret1")
	requireCode(t, err, "invalid-email")

	_, err = p.CreateAccount(ctx, "bob@example.com", "123")
	requireCode(t, err, "weak-password")
}

func TestSignInWithPassword(t *testing.T) {
	ctx := context.Background()
	p := New()
	_, err := p.CreateAccount(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.SignInWithPassword(ctx, "nobody@example.com", "x")
	requireCode(t, err, "user-not-found")

	_, err = p.SignInWithPassword(ctx, "ann@example.com", "wrong")
	requireCode(t, err, "wrong-password")

	u, err := p.SignInWithPassword(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.UID, p.Current().UID)

	p.Disable("ann@example.com")
	_, err = p.SignInWithPassword(ctx, "ann@example.com", "secret1")
	requireCode(t, err, "user-disabled")
}

func TestSignInFederated(t *testing.T) {
	ctx := context.Background()
	p := New()

	_, err := p.SignInWithCredential(ctx, provider.FederatedCredential{Provider: provider.GoogleProviderID})
	requireCode(t, err, "invalid-credential")

	p.LinkFederated("tok", provider.User{UID: "g1", Email: "g@example.com", DisplayName: "G"})
	u, err := p.SignInWithCredential(ctx, provider.FederatedCredential{Provider: provider.GoogleProviderID, IDToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "g1", u.UID)
	assert.Equal(t, "G", u.DisplayName)

	_, err = p.CreateAccount(ctx, "dup@example.com", "secret1")
	require.NoError(t, err)
	p.LinkFederated("dup", provider.User{UID: "g2", Email: "dup@example.com"})
	_, err = p.SignInWithCredential(ctx, provider.FederatedCredential{IDToken: "dup"})
	requireCode(t, err, "account-exists-with-different-credential")
}

func TestAuthStateChanges_ReplaysCurrentThenChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := New()

	ch := p.AuthStateChanges(ctx)
	first := <-ch
	assert.Nil(t, first)

	u, err := p.CreateAccount(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	select {
	case got := <-ch:
		require.NotNil(t, got)
		assert.Equal(t, u.UID, got.UID)
	case <-time.After(time.Second):
		t.Fatal("no state change")
	}

	require.NoError(t, p.SignOut(ctx))
	select {
	case got := <-ch:
		assert.Nil(t, got)
	case <-time.After(time.Second):
		t.Fatal("no sign-out change")
	}
}

func TestSignOutError(t *testing.T) {
	p := New(WithSignOutError(errors.New("io")))
	require.Error(t, p.SignOut(context.Background()))
}

func TestVerifyPhoneNumber_AutoCode(t *testing.T) {
	ctx := context.Background()
	p := New(WithAutoCode("123456"))

	var gotID string
	var gotToken *int
	err := p.VerifyPhoneNumber(ctx, "+15550100", nil, provider.PhoneCallbacks{
		OnCodeSent: func(id string, tok *int) { gotID, gotToken = id, tok },
	})
	require.NoError(t, err)
	require.NotEmpty(t, gotID)
	require.NotNil(t, gotToken)

	_, err = p.SignInWithCredential(ctx, provider.PhoneCredential{VerificationID: gotID, SMSCode: "000000"})
	requireCode(t, err, "invalid-verification-code")

	u, err := p.SignInWithCredential(ctx, provider.PhoneCredential{VerificationID: gotID, SMSCode: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "+15550100", u.PhoneNumber)

	_, err = p.SignInWithCredential(ctx, provider.PhoneCredential{VerificationID: gotID, SMSCode: "123456"})
	requireCode(t, err, "invalid-verification-id")
}

func TestVerifyPhoneNumber_InvalidNumber(t *testing.T) {
	p := New()
	var failed error
	err := p.VerifyPhoneNumber(context.Background(), "12", nil, provider.PhoneCallbacks{
		OnFailed: func(err error) { failed = err },
	})
	require.NoError(t, err)
	requireCode(t, failed, "invalid-phone-number")
}

func TestFire_IgnoresCancelledRequest(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())

	called := false
	require.NoError(t, p.VerifyPhoneNumber(ctx, "+15550100", nil, provider.PhoneCallbacks{
		OnTimeout: func(string) { called = true },
	}))
	cancel()

	assert.False(t, p.FireTimeout("v"))
	assert.False(t, called)
}

func TestRequests_RecordResendToken(t *testing.T) {
	p := New()
	tok := 3
	require.NoError(t, p.VerifyPhoneNumber(context.Background(), "+15550100", &tok, provider.PhoneCallbacks{}))

	reqs := p.Requests()
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].ResendToken)
	assert.Equal(t, 3, *reqs[0].ResendToken)
}
