package token

import (
	"crypto/rand"
	"encoding/base64"

	"highcard-server/internal/rng"
)

// joinCodeAlphabet omits characters that read ambiguously (0/O, 1/I/L)
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the length of a game join code
const JoinCodeLength = 6

// Generate returns a crypto-secure random string of length n
// The random string contains the following characters:
// ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_
func Generate(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	// base64 increases size by ~33%
	return base64.RawURLEncoding.EncodeToString(b)[0:n], nil
}

// JoinCode returns a short code players type to claim a seat
func JoinCode() string {
	var gen rng.Crypto
	code := make([]byte, JoinCodeLength)
	for i := range code {
		code[i] = joinCodeAlphabet[gen.Intn(len(joinCodeAlphabet))]
	}

	return string(code)
}
