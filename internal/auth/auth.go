// Package auth gates the admin pipeline behind a shared secret.
//
// The static comparison is a known-insecure placeholder: a real
// deployment would swap in a credential service behind the same
// Authenticator contract. There is deliberately no lockout and no
// distinction between a wrong and a missing secret.
package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredential is reported once per failed attempt, as a
// generic denial.
var ErrInvalidCredential = errors.New("invalid admin credential")

// Authenticator validates an operator-supplied secret.
type Authenticator interface {
	Authenticate(secret string) bool
}

// Static compares against a fixed shared secret.
type Static struct {
	secret string
}

// NewStatic creates an Authenticator for the given shared secret.
func NewStatic(secret string) *Static {
	return &Static{secret: secret}
}

// Authenticate reports whether the supplied secret matches. An empty
// configured secret never authenticates.
func (a *Static) Authenticate(secret string) bool {
	if a.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.secret), []byte(secret)) == 1
}
