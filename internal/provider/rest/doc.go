// Package rest implements provider.IdentityProvider over the Identity
// Toolkit REST API (v1 accounts endpoints). Pointing BaseURL at a local auth
// emulator works the same way.
//
// Transient failures (transport errors, HTTP 5xx and 429) are retried with
// exponential backoff, and every call goes through a circuit breaker. Backend
// rejections are normalised into the kebab-case codes used by package
// failures, e.g. EMAIL_EXISTS becomes "email-already-in-use".
//
// The REST API is stateless, so the signed-in session and the auth-state
// stream are kept here, the way a client SDK would.
package rest
