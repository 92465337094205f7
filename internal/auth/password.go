// Package auth - password.go wraps bcrypt hashing and verification for stored
// credentials.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of the plaintext password at the given
// cost. A cost of 0 falls back to a work factor of 12, which keeps single
// verifications under ~300ms on current hardware.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = 12
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// bcrypt hash. The comparison runs in constant time relative to the hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
