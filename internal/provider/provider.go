package provider

import (
	"context"
)

// User is the identity reported by the provider.
type User struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	PhoneNumber string
}

// Credential is proof of identity exchanged for a provider session.
type Credential interface {
	ProviderID() string
}

// FederatedCredential carries tokens obtained from a federated sign-in.
type FederatedCredential struct {
	Provider    string
	IDToken     string
	AccessToken string
}

func (c FederatedCredential) ProviderID() string { return c.Provider }

// PhoneCredential pairs a verification id with the SMS code sent for it.
type PhoneCredential struct {
	VerificationID string
	SMSCode        string
}

func (PhoneCredential) ProviderID() string { return PhoneProviderID }

const (
	GoogleProviderID = "google.com"
	PhoneProviderID  = "phone"
)

// PhoneCallbacks receives the asynchronous outcomes of VerifyPhoneNumber.
// Callbacks may fire on any goroutine.
type PhoneCallbacks struct {
	// OnAutoVerified fires when the provider completed verification without
	// user input. The credential can be used with SignInWithCredential.
	OnAutoVerified func(cred PhoneCredential)

	// OnFailed fires when verification cannot proceed.
	OnFailed func(err error)

	// OnCodeSent fires once an SMS code was dispatched.
	OnCodeSent func(verificationID string, resendToken *int)

	// OnTimeout fires when the auto-retrieval window expired.
	OnTimeout func(verificationID string)
}

// IdentityProvider is the capability the auth façade is built on.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (*User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	SignInWithCredential(ctx context.Context, cred Credential) (*User, error)
	SignOut(ctx context.Context) error

	// AuthStateChanges emits the current user (nil when signed out) followed
	// by every change. The channel closes when ctx is done.
	AuthStateChanges(ctx context.Context) <-chan *User

	// VerifyPhoneNumber starts verification and returns once the request was
	// issued. Outcomes are delivered through cb until ctx is cancelled.
	VerifyPhoneNumber(ctx context.Context, phoneNumber string, resendToken *int, cb PhoneCallbacks) error
}
