// Package auth is the authentication repository used by front ends.
//
// It combines an identity provider, a federated sign-in client, the phone
// verification coordinator and the user cache behind one surface. Every
// provider error is translated into a *failures.Failure of the operation's
// family before it reaches the caller.
package auth
