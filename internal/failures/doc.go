// Package failures maps identity provider error codes to the fixed set of
// domain failures returned by the auth façade.
//
// Each operation family (sign-up, email login, federated login, phone login)
// has its own table of known codes. Unknown or empty codes map to the family's
// default failure carrying DefaultMessage. FromCode is total and pure.
//
// Callers match failures with errors.As or errors.Is:
//
//	var f *failures.Failure
//	if errors.As(err, &f) && f.Code == "wrong-password" { ... }
//
//	if errors.Is(err, failures.ErrCodeNotSent) { ... }
package failures
