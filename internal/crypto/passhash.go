// Package crypto implements server-side password hashing and random token generation.
package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"math/big"

	"golang.org/x/crypto/pbkdf2"

	"github.com/thskolan/casetrack/internal/errs"
)

// PBKDF2-HMAC-SHA512 parameters. Raising iterations or key length raises
// brute-force cost at a proportional CPU cost per login.
const (
	// DefaultIterations is the KDF round count stored with each credential.
	DefaultIterations = 10000
	// KeyLength is the derived key size in bytes (2048 bits).
	KeyLength = 256
	// SaltLength is the per-credential random salt size in bytes.
	SaltLength = 256
	// SessionTokenLength is the character count of opaque session tokens.
	SessionTokenLength = 255
	// SecretLength is the character count of the process signing secret.
	SecretLength = 255
)

// TokenAlphabet is the fixed alphabet for opaque tokens and the signing secret.
const TokenAlphabet = "0123456789abcdfghijklmopqrstuvwxyzABCDEFGHIJKLMOPQRSTUVWXYZ"

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// GenerateSalt returns a fresh random salt of SaltLength bytes.
func GenerateSalt() ([]byte, error) {
	return RandBytes(SaltLength)
}

// HashPassword derives a KeyLength-byte key from password and salt using
// PBKDF2-HMAC-SHA512. Same inputs always yield the same output.
func HashPassword(password string, salt []byte, iterations int) ([]byte, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", errs.ErrHashing, iterations)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", errs.ErrHashing)
	}
	return pbkdf2.Key([]byte(password), salt, iterations, KeyLength, sha512.New), nil
}

// VerifyPassword recomputes the hash with the stored salt and iteration count
// and compares it to the stored hash in constant time.
func VerifyPassword(password string, salt, expected []byte, iterations int) bool {
	got, err := HashPassword(password, salt, iterations)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, expected) == 1
}

// GenerateToken returns a random string of length characters drawn from
// TokenAlphabet using a CSPRNG. Used for session tokens and the signing secret.
func GenerateToken(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("%w: token length must be positive, got %d", errs.ErrHashing, length)
	}
	alphabetSize := big.NewInt(int64(len(TokenAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrHashing, err)
		}
		out[i] = TokenAlphabet[n.Int64()]
	}
	return string(out), nil
}
