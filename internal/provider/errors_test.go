package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("wrapped: %w", NewError("wrong-password", "bad")))
	assert.True(t, ok)
	assert.Equal(t, "wrong-password", code)

	code, ok = CodeOf(errors.New("boom"))
	assert.False(t, ok)
	assert.Empty(t, code)

	_, ok = CodeOf(nil)
	assert.False(t, ok)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "provider error: user-disabled", NewError("user-disabled", "").Error())
	assert.Equal(t, "provider error: weak-password: too short", NewError("weak-password", "too short").Error())
}

func TestCredentials_ProviderID(t *testing.T) {
	assert.Equal(t, PhoneProviderID, PhoneCredential{}.ProviderID())
	assert.Equal(t, GoogleProviderID, FederatedCredential{Provider: GoogleProviderID}.ProviderID())
}
