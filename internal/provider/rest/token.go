package rest

import (
	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/golang-jwt/jwt/v5"
)

// idTokenClaims are the profile claims of an ID token.
type idTokenClaims struct {
	Name        string `json:"name"`
	Picture     string `json:"picture"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	UserID      string `json:"user_id"`
	jwt.RegisteredClaims
}

// fillFromIDToken completes missing profile fields of u from token claims.
// The token signature is not checked: it was just issued by the backend over
// TLS and is only read for display data.
func fillFromIDToken(u *provider.User, token string) {
	if token == "" {
		return
	}
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return
	}

	if u.UID == "" {
		u.UID = claims.UserID
		if u.UID == "" {
			u.UID = claims.Subject
		}
	}
	if u.Email == "" {
		u.Email = claims.Email
	}
	if u.DisplayName == "" {
		u.DisplayName = claims.Name
	}
	if u.PhotoURL == "" {
		u.PhotoURL = claims.Picture
	}
	if u.PhoneNumber == "" {
		u.PhoneNumber = claims.PhoneNumber
	}
}
