// Package cryptox implements the password credential scheme shared by the
// client and the server: the client stretches the password with Argon2id and
// only ever sends a SHA-256 verifier of the derived key.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/journal/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of freshly generated salts.
const SaltSize = 32

// DeriveKey stretches password with salt using Argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns the value the server stores and compares against.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// VerifierFor derives the verifier for password under salt.
func VerifierFor(password []byte, salt []byte) []byte {
	key := DeriveKey(password, salt)
	defer common.Wipe(key)
	return MakeVerifier(key)
}

// NewCredentials generates a random salt and the matching verifier, as used
// by sign-up and password reset.
func NewCredentials(password []byte) (salt, verifier []byte) {
	salt = common.RandomBytes(SaltSize)
	return salt, VerifierFor(password, salt)
}

// Equal compares two verifiers in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
