package encoder

import (
	"errors"

	"github.com/bittyphp/bitty-security/pkg/security"
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt is the adaptive-hash strategy. It is self-salting: the external salt
// argument is ignored and the per-hash salt lives inside the bcrypt output.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt encoder with the given cost factor. A cost of
// zero selects bcrypt.DefaultCost; the cost is validated by the underlying
// primitive on first use, not here.
func NewBcrypt(cost int) *Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Encode hashes the password. The salt argument is ignored.
func (e *Bcrypt) Encode(password, _ string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), e.cost)
	if err != nil {
		return "", security.NewAuthenticationError("encode password: %v", err)
	}
	return string(hash), nil
}

// Verify checks the password against a bcrypt hash. Bcrypt embeds its own
// salt, so verification delegates to the primitive instead of re-encoding.
func (e *Bcrypt) Verify(encoded, password, _ string) (bool, error) {
	if err := checkPassword(password); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// Malformed or truncated hashes are a mismatch, not an engine fault.
	return false, nil
}
