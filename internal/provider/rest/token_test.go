package rest

import (
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/provider"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
)

func TestFillFromIDToken(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"user_id":      "uid-1",
		"sub":          "sub-1",
		"name":         "Ada",
		"email":        "ada@example.com",
		"phone_number": "+15550001",
	})

	tests := []struct {
		name  string
		in    provider.User
		token string
		want  provider.User
	}{
		{
			name:  "fills missing fields",
			in:    provider.User{},
			token: tok,
			want:  provider.User{UID: "uid-1", DisplayName: "Ada", Email: "ada@example.com", PhoneNumber: "+15550001"},
		},
		{
			name:  "keeps response fields",
			in:    provider.User{UID: "x", Email: "x@example.com"},
			token: tok,
			want:  provider.User{UID: "x", DisplayName: "Ada", Email: "x@example.com", PhoneNumber: "+15550001"},
		},
		{
			name:  "garbage token",
			in:    provider.User{UID: "x"},
			token: "garbage",
			want:  provider.User{UID: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			fillFromIDToken(&got, tt.token)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("user mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
