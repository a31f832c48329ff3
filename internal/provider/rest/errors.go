package rest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/provider"
)

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// serverCodes maps backend error messages to client error codes.
var serverCodes = map[string]string{
	"EMAIL_EXISTS":                     "email-already-in-use",
	"OPERATION_NOT_ALLOWED":            "operation-not-allowed",
	"PASSWORD_LOGIN_DISABLED":          "operation-not-allowed",
	"TOO_MANY_ATTEMPTS_TRY_LATER":      "too-many-requests",
	"EMAIL_NOT_FOUND":                  "user-not-found",
	"USER_NOT_FOUND":                   "user-not-found",
	"INVALID_PASSWORD":                 "wrong-password",
	"INVALID_LOGIN_CREDENTIALS":        "invalid-credential",
	"USER_DISABLED":                    "user-disabled",
	"INVALID_EMAIL":                    "invalid-email",
	"MISSING_EMAIL":                    "invalid-email",
	"WEAK_PASSWORD":                    "weak-password",
	"INVALID_IDP_RESPONSE":             "invalid-credential",
	"FEDERATED_USER_ID_ALREADY_LINKED": "credential-already-in-use",
	"INVALID_PHONE_NUMBER":             "invalid-phone-number",
	"MISSING_PHONE_NUMBER":             "missing-phone-number",
	"INVALID_CODE":                     "invalid-verification-code",
	"MISSING_CODE":                     "missing-verification-code",
	"INVALID_SESSION_INFO":             "invalid-verification-id",
	"MISSING_SESSION_INFO":             "missing-verification-id",
	"SESSION_EXPIRED":                  "code-expired",
	"QUOTA_EXCEEDED":                   "quota-exceeded",
	"CAPTCHA_CHECK_FAILED":             "captcha-check-failed",
	"INVALID_ID_TOKEN":                 "invalid-user-token",
}

// normalizeCode turns "WEAK_PASSWORD : Password should be ..." into
// ("weak-password", "Password should be ...").
func normalizeCode(message string) (code, detail string) {
	head, tail, _ := strings.Cut(message, ":")
	head = strings.TrimSpace(head)
	detail = strings.TrimSpace(tail)

	if c, ok := serverCodes[head]; ok {
		return c, detail
	}
	return strings.ReplaceAll(strings.ToLower(head), "_", "-"), detail
}

// decodeError builds a *provider.Error from an error response body. Bodies
// that are not in the backend error shape yield a plain error.
func decodeError(status int, payload []byte) error {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err != nil || body.Error.Message == "" {
		return fmt.Errorf("unexpected status %d", status)
	}
	code, detail := normalizeCode(body.Error.Message)
	return provider.NewError(code, detail)
}
