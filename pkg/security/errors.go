package security

import "fmt"

// Credential length ceilings. Anything longer is rejected before hashing to
// avoid burning CPU on adversarial inputs (CVE-2013-5750 class of issues).
const (
	MaxUsernameLen = 4096
	MaxPasswordLen = 4096
)

// AuthenticationError reports a failed credential check. The message
// deliberately stays generic so it can be surfaced to end users and emitted
// on failure events without confirming account existence.
type AuthenticationError struct {
	msg string
}

// NewAuthenticationError builds an AuthenticationError with the given message.
func NewAuthenticationError(format string, args ...any) *AuthenticationError {
	return &AuthenticationError{msg: fmt.Sprintf(format, args...)}
}

func (e *AuthenticationError) Error() string { return e.msg }

// Shared authentication failures. Compared with errors.Is; pointer identity
// is intentional.
var (
	ErrInvalidUsername = NewAuthenticationError("invalid username")
	ErrInvalidPassword = NewAuthenticationError("invalid password")
	ErrUsernameTooLong = NewAuthenticationError("invalid username")
	ErrPasswordTooLong = NewAuthenticationError("invalid password")
)

// AuthorizationError reports a denied or failed authorization decision.
type AuthorizationError struct {
	msg string
}

// NewAuthorizationError builds an AuthorizationError with the given message.
func NewAuthorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{msg: fmt.Sprintf(format, args...)}
}

func (e *AuthorizationError) Error() string { return e.msg }

// SecurityError reports a configuration or resolution fault, such as a user
// record whose type tag no encoder covers. It is fatal to the request rather
// than a normal state-machine branch.
type SecurityError struct {
	msg string
}

// NewSecurityError builds a SecurityError with the given message.
func NewSecurityError(format string, args ...any) *SecurityError {
	return &SecurityError{msg: fmt.Sprintf(format, args...)}
}

func (e *SecurityError) Error() string { return e.msg }
