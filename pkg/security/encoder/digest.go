package encoder

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
)

// digestAlgorithms maps the supported algorithm names to their constructors.
var digestAlgorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// MessageDigest is the general hash strategy: a named digest algorithm over
// the password, with an optional external salt prepended as "salt:password".
type MessageDigest struct {
	algorithm string
	newHash   func() hash.Hash
}

// NewMessageDigest returns a message-digest encoder for the named algorithm.
func NewMessageDigest(algorithm string) (*MessageDigest, error) {
	newHash, ok := digestAlgorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("%q is not a valid hash algorithm", algorithm)
	}
	return &MessageDigest{algorithm: algorithm, newHash: newHash}, nil
}

// Algorithm returns the configured algorithm name.
func (e *MessageDigest) Algorithm() string { return e.algorithm }

// Encode hashes the password, salted as "salt:password" when a salt is given.
func (e *MessageDigest) Encode(password, salt string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	if salt != "" {
		password = salt + ":" + password
	}
	h := e.newHash()
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify re-encodes the candidate and compares in constant time.
func (e *MessageDigest) Verify(encoded, password, salt string) (bool, error) {
	return verifyByEncoding(e, encoded, password, salt)
}
