package federated

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/provider"
)

// Static is a Client that returns preconfigured results. It backs the
// offline provider mode and tests.
type Static struct {
	mu         sync.Mutex
	Credential provider.FederatedCredential
	SignInErr  error
	SignOutErr error

	signIns  int
	signOuts int
}

var _ Client = (*Static)(nil)

func (s *Static) SignIn(ctx context.Context) (provider.FederatedCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signIns++
	if s.SignInErr != nil {
		return provider.FederatedCredential{}, s.SignInErr
	}
	return s.Credential, nil
}

func (s *Static) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signOuts++
	return s.SignOutErr
}

// Calls reports how many times SignIn and SignOut ran.
func (s *Static) Calls() (signIns, signOuts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signIns, s.signOuts
}
