package common

import (
	"crypto/rand"
	"encoding/hex"
)

// Sizes, in random bytes, of the tokens handed out by the server.
const (
	RefreshTokenBytes = 32
	ResetCodeBytes    = 16
)

// RandomBytes returns n bytes from crypto/rand, which never fails.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// RandomHex returns n random bytes hex-encoded, 2n characters long.
func RandomHex(n int) string {
	return hex.EncodeToString(RandomBytes(n))
}

// Wipe zeroes b. Passwords and derived keys are wiped after use.
func Wipe(b []byte) {
	clear(b)
}
