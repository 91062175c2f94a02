// Package cryptox provides the PIN hashing primitives used by the
// authorization layer. The hashing service is injectable (see PinHasher), so
// callers that bring their own KDF never import this package; the PBKDF2
// implementation here is the stand-alone default.
package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// PinHasher derives a fixed-length hash from a PIN and a per-gist salt.
// The same function must be used at creation time and at verification time;
// the policy layer only compares outputs, it never inspects the algorithm.
type PinHasher func(pin, salt []byte) []byte

const (
	// DefaultPinHashIterations is the PBKDF2 iteration count used when no
	// override is configured. PINs are short, so the count is deliberately
	// high for an interactive credential.
	DefaultPinHashIterations = 100_000

	// PinHashLength is the derived key length in bytes.
	PinHashLength = 32

	// PinSaltLength is the per-gist salt length in bytes.
	PinSaltLength = 32
)

// NewPBKDF2PinHasher returns a PinHasher backed by PBKDF2-SHA256 with the
// given iteration count. Iterations <= 0 fall back to the default.
func NewPBKDF2PinHasher(iterations int) PinHasher {
	if iterations <= 0 {
		iterations = DefaultPinHashIterations
	}
	return func(pin, salt []byte) []byte {
		return pbkdf2.Key(pin, salt, iterations, PinHashLength, sha256.New)
	}
}
