package rest

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/gophauth/internal/provider"
)

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
}

type phoneSignInRequest struct {
	SessionInfo string `json:"sessionInfo"`
	Code        string `json:"code"`
}

// authResponse is the union of the sign-in response fields used here.
type authResponse struct {
	LocalID          string `json:"localId"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	PhotoURL         string `json:"photoUrl"`
	PhoneNumber      string `json:"phoneNumber"`
	IDToken          string `json:"idToken"`
	RefreshToken     string `json:"refreshToken"`
	NeedConfirmation bool   `json:"needConfirmation"`
	ErrorMessage     string `json:"errorMessage"`
}

func (c *Client) establish(ctx context.Context, op string, r *authResponse) *provider.User {
	u := provider.User{
		UID:         r.LocalID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		PhoneNumber: r.PhoneNumber,
	}
	fillFromIDToken(&u, r.IDToken)

	c.mu.Lock()
	c.session = &session{user: u, idToken: r.IDToken, refreshToken: r.RefreshToken}
	c.hub.Publish(copyUser(&u))
	c.mu.Unlock()

	c.log.Debug(ctx, "session established", "op", op, "uid", u.UID)
	return copyUser(&u)
}

func copyUser(u *provider.User) *provider.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (c *Client) CreateAccount(ctx context.Context, email, password string) (*provider.User, error) {
	var resp authResponse
	err := c.call(ctx, "signUp", passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp)
	if err != nil {
		return nil, err
	}
	return c.establish(ctx, "signUp", &resp), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*provider.User, error) {
	var resp authResponse
	err := c.call(ctx, "signInWithPassword", passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, &resp)
	if err != nil {
		return nil, err
	}
	return c.establish(ctx, "signInWithPassword", &resp), nil
}

func (c *Client) SignInWithCredential(ctx context.Context, cred provider.Credential) (*provider.User, error) {
	switch cr := cred.(type) {
	case provider.FederatedCredential:
		return c.signInWithIdp(ctx, cr)
	case provider.PhoneCredential:
		return c.signInWithPhone(ctx, cr)
	default:
		return nil, provider.NewError("operation-not-allowed", "unsupported credential")
	}
}

func (c *Client) signInWithIdp(ctx context.Context, cred provider.FederatedCredential) (*provider.User, error) {
	if cred.IDToken == "" && cred.AccessToken == "" {
		return nil, provider.NewError("invalid-credential", "empty federated credential")
	}
	providerID := cred.Provider
	if providerID == "" {
		providerID = provider.GoogleProviderID
	}

	post := url.Values{}
	if cred.IDToken != "" {
		post.Set("id_token", cred.IDToken)
	}
	if cred.AccessToken != "" {
		post.Set("access_token", cred.AccessToken)
	}
	post.Set("providerId", providerID)

	var resp authResponse
	err := c.call(ctx, "signInWithIdp", idpRequest{
		PostBody:            post.Encode(),
		RequestURI:          "http://localhost",
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.NeedConfirmation {
		return nil, provider.NewError("account-exists-with-different-credential", resp.Email)
	}
	if resp.ErrorMessage != "" {
		code, detail := normalizeCode(resp.ErrorMessage)
		return nil, provider.NewError(code, detail)
	}
	return c.establish(ctx, "signInWithIdp", &resp), nil
}

func (c *Client) signInWithPhone(ctx context.Context, cred provider.PhoneCredential) (*provider.User, error) {
	var resp authResponse
	err := c.call(ctx, "signInWithPhoneNumber", phoneSignInRequest{SessionInfo: cred.VerificationID, Code: cred.SMSCode}, &resp)
	if err != nil {
		return nil, err
	}
	return c.establish(ctx, "signInWithPhoneNumber", &resp), nil
}

// SignOut drops the local session. The REST API keeps no server-side state
// to revoke here.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.session = nil
	c.hub.Publish(nil)
	c.mu.Unlock()

	c.log.Debug(ctx, "signed out")
	return nil
}

func (c *Client) AuthStateChanges(ctx context.Context) <-chan *provider.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	var current *provider.User
	if c.session != nil {
		current = copyUser(&c.session.user)
	}
	return c.hub.SubscribeWith(ctx, current)
}

// IDToken returns the ID token of the current session.
func (c *Client) IDToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", provider.ErrNoSession
	}
	return c.session.idToken, nil
}
