// Package auth implements the credential primitives for the admin panel:
// bcrypt password hashing, random session tokens, and optional CAPTCHA
// verification. Session persistence lives in the repositories package; the
// login flow itself is wired up in the API handlers.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of a plaintext password at the given
// cost. Cost 0 falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// FailureDelay returns a random duration between 200ms and 400ms. Every
// failed login sleeps for this long before responding, so response timing
// does not reveal whether the login or the password was wrong.
func FailureDelay() time.Duration {
	n, err := rand.Int(rand.Reader, big.NewInt(200))
	if err != nil {
		// crypto/rand failing is effectively fatal elsewhere; here the
		// midpoint keeps the delay in range.
		return 300 * time.Millisecond
	}
	return time.Duration(200+n.Int64()) * time.Millisecond
}

// NewSessionToken returns a 64-character hex string from 32 bytes of
// cryptographic randomness.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
