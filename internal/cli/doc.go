// Package cli provides the interactive gophauth command-line client.
//
// It drives an auth.Repository from a small REPL. Typical flow: register or
// log in (email, Google or phone), watch auth-state changes printed by a
// background goroutine, and log out.
//
// Commands:
//   - register / login  email and password
//   - google            Google sign-in through the device flow
//   - phone / verify    phone number sign-in with an SMS code
//   - whoami            show the cached current user
//   - logout
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
