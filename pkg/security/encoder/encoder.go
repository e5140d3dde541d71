// Package encoder implements one-way password transforms and their
// constant-time verification, plus the per-user-type resolution used by the
// authenticator.
package encoder

import (
	"crypto/subtle"

	"github.com/bittyphp/bitty-security/pkg/security"
)

// Encoder hashes plain-text passwords and verifies candidates against a
// stored hash. Salt handling is strategy specific: self-salting strategies
// ignore the external salt entirely.
type Encoder interface {
	// Encode returns the one-way transform of the password.
	Encode(password, salt string) (string, error)

	// Verify reports whether the password matches the encoded hash. The
	// comparison must be constant time; implementations never compare raw
	// strings with ==.
	Verify(encoded, password, salt string) (bool, error)
}

// checkPassword rejects over-long passwords before any hashing work happens.
func checkPassword(password string) error {
	if len(password) > security.MaxPasswordLen {
		return security.ErrPasswordTooLong
	}
	return nil
}

// verifyByEncoding is the shared Verify implementation for deterministic
// encoders: re-encode the candidate and compare in constant time.
func verifyByEncoding(e Encoder, encoded, password, salt string) (bool, error) {
	if err := checkPassword(password); err != nil {
		return false, err
	}
	candidate, err := e.Encode(password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(encoded), []byte(candidate)) == 1, nil
}
