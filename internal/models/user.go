// Package models defines the identity data shared by the auth façade,
// the provider adapters and the user cache.
package models

// User is an identity snapshot of the authenticated account.
//
// The zero value is the unauthenticated sentinel, see EmptyUser.
type User struct {
	// ID is the stable unique identifier issued by the identity provider.
	ID string `json:"id"`

	// Email is optional; phone-only accounts have none.
	Email string `json:"email,omitempty"`

	// Name is the optional display name.
	Name string `json:"name,omitempty"`

	// Photo is an optional avatar URL.
	Photo string `json:"photo,omitempty"`

	// Phone is the verified E.164 phone number, if any.
	Phone string `json:"phone,omitempty"`
}

// EmptyUser represents an unauthenticated session.
var EmptyUser = User{}

// IsEmpty reports whether u is the unauthenticated sentinel.
func (u User) IsEmpty() bool {
	return u == EmptyUser
}

// Label returns a short human-readable handle for prompts and logs.
func (u User) Label() string {
	switch {
	case u.IsEmpty():
		return ""
	case u.Email != "":
		return u.Email
	case u.Phone != "":
		return u.Phone
	case u.Name != "":
		return u.Name
	default:
		return u.ID
	}
}
