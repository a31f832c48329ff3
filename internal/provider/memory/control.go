package memory

import (
	"github.com/dmitrijs2005/gophauth/internal/provider"
)

// The methods below drive the callbacks of the most recent phone request.
// Callbacks of a request whose context is done are never invoked.

// Requests returns a copy of all recorded phone requests.
func (p *Provider) Requests() []PhoneRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PhoneRequest, 0, len(p.requests))
	for _, r := range p.requests {
		out = append(out, PhoneRequest{PhoneNumber: r.PhoneNumber, ResendToken: r.ResendToken})
	}
	return out
}

func (p *Provider) lastRequest() *PhoneRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return nil
	}
	return p.requests[len(p.requests)-1]
}

func (r *PhoneRequest) live() bool {
	return r != nil && r.ctx.Err() == nil
}

// FireCodeSent registers code for verificationID and reports it as sent with
// a fresh resend token. It reports whether a live request received it.
func (p *Provider) FireCodeSent(verificationID, code string) bool {
	r := p.lastRequest()
	if !r.live() {
		return false
	}

	p.mu.Lock()
	p.pending[verificationID] = pendingCode{phone: r.PhoneNumber, code: code}
	p.resendSeq++
	token := p.resendSeq
	p.mu.Unlock()

	if r.cb.OnCodeSent != nil {
		r.cb.OnCodeSent(verificationID, &token)
	}
	return true
}

// FireAutoVerified simulates SMS auto-retrieval of code.
func (p *Provider) FireAutoVerified(verificationID, code string) bool {
	r := p.lastRequest()
	if !r.live() {
		return false
	}

	p.mu.Lock()
	p.pending[verificationID] = pendingCode{phone: r.PhoneNumber, code: code}
	p.mu.Unlock()

	if r.cb.OnAutoVerified != nil {
		r.cb.OnAutoVerified(provider.PhoneCredential{VerificationID: verificationID, SMSCode: code})
	}
	return true
}

// FireFailed reports a verification failure.
func (p *Provider) FireFailed(err error) bool {
	r := p.lastRequest()
	if !r.live() {
		return false
	}
	if r.cb.OnFailed != nil {
		r.cb.OnFailed(err)
	}
	return true
}

// FireTimeout reports expiry of the auto-retrieval window.
func (p *Provider) FireTimeout(verificationID string) bool {
	r := p.lastRequest()
	if !r.live() {
		return false
	}
	if r.cb.OnTimeout != nil {
		r.cb.OnTimeout(verificationID)
	}
	return true
}

// Disable marks the account with email as disabled.
func (p *Provider) Disable(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acc, ok := p.accounts[email]; ok {
		acc.disabled = true
	}
}

// LinkFederated binds idToken to a profile so federated sign-in returns it.
func (p *Provider) LinkFederated(idToken string, u provider.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := u
	p.federated[idToken] = &account{user: c}
}

// Current returns the signed-in user, if any.
func (p *Provider) Current() *provider.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyUser(p.current)
}
