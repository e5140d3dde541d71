package encoder

// Plain is the identity strategy: the "hash" is the password itself.
// It exists for tests and local experiments only; never use it in production.
type Plain struct{}

// NewPlain returns the identity encoder.
func NewPlain() *Plain { return &Plain{} }

// Encode returns the password unchanged.
func (e *Plain) Encode(password, _ string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	return password, nil
}

// Verify compares the password against the stored value in constant time.
func (e *Plain) Verify(encoded, password, salt string) (bool, error) {
	return verifyByEncoding(e, encoded, password, salt)
}
