// Package provider declares the identity provider capability consumed by the
// auth façade.
//
// # Overview
//
// The identity backend is treated as an opaque remote service. The
// IdentityProvider interface covers account creation, password sign-in,
// credential exchange (federated and phone), sign-out, the auth-state change
// stream, and callback-driven phone number verification.
//
// Implementations:
//   - provider/rest:   Identity Toolkit REST API (or its local emulator)
//   - provider/memory: in-process accounts for tests and local runs
//
// # Error Handling
//
// Fallible calls report backend rejections as *Error carrying an opaque Code
// (for example "wrong-password"). Any other error is a transport or internal
// failure. Callers interpret codes through package failures.
package provider
