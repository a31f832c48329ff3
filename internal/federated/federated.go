// Package federated obtains credentials from third-party identity providers
// and ends their sessions.
package federated

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/provider"
)

// ErrCancelled is returned when the user abandons the federated sign-in.
var ErrCancelled = errors.New("federated sign-in cancelled")

// Client is a federated sign-in capability.
type Client interface {
	// SignIn runs the interactive flow and returns a credential that the
	// identity provider can exchange for a session.
	SignIn(ctx context.Context) (provider.FederatedCredential, error)

	// SignOut forgets the federated session.
	SignOut(ctx context.Context) error
}
