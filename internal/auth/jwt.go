// Package auth - jwt.go handles JWT token creation, signing, and verification
// using a shared secret, including lazy secret initialization and claims parsing.
//
// Two token families exist: subject tokens (access and refresh, carrying only the
// account email as sub) and invite tokens (carrying the invitee email and the
// invite record ID). Both are HS256-signed with the same shared secret.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// jwtSecret holds the validated JWT secret
	jwtSecret     string
	jwtSecretOnce sync.Once
	jwtSecretErr  error
)

// InviteClaims is the payload of an invitation token. Email identifies the
// invitee and InviteID ties the token back to the stored invite row so a
// cancelled or already-consumed invite cannot be replayed.
type InviteClaims struct {
	Email    string `json:"email"`
	InviteID string `json:"invite_id"`
	jwt.RegisteredClaims
}

// isDevMode checks if we're in development mode (duplicated here to avoid import cycle)
func isDevMode() bool {
	devMode := os.Getenv("DEV_MODE")
	ginMode := os.Getenv("GIN_MODE")

	return devMode == "true" || devMode == "1" || ginMode == "debug"
}

// generateRandomSecret creates a cryptographically secure random secret
func generateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a less secure but functional secret
		return fmt.Sprintf("dev-fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// ValidateJWTSecret checks that the JWT secret is properly configured.
// In production, this will fail if ELENCHO_JWT_SECRET is not set.
// In dev mode, it will generate a random secret and log a warning.
// Call this at application startup.
func ValidateJWTSecret() error {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("ELENCHO_JWT_SECRET")

		if secret == "" {
			if isDevMode() {
				// In dev mode, generate a random secret and warn
				jwtSecret = generateRandomSecret()
				log.Printf("WARNING: ELENCHO_JWT_SECRET not set. Using auto-generated secret for development.")
				log.Printf("WARNING: Tokens will not survive restarts. Set ELENCHO_JWT_SECRET for persistent sessions.")
			} else {
				// In production, fail fast
				jwtSecretErr = errors.New("SECURITY ERROR: ELENCHO_JWT_SECRET environment variable is required in production. " +
					"Generate a secure secret with: openssl rand -hex 32")
			}
			return
		}

		// Validate secret length (minimum 32 characters recommended)
		if len(secret) < 32 {
			log.Printf("WARNING: ELENCHO_JWT_SECRET is shorter than recommended 32 characters. Consider using a longer secret.")
		}

		jwtSecret = secret
	})

	return jwtSecretErr
}

// GetJWTSecret retrieves the validated JWT secret.
// Panics if ValidateJWTSecret() hasn't been called or failed.
func GetJWTSecret() string {
	if jwtSecret == "" {
		// If ValidateJWTSecret wasn't called, try to validate now
		if err := ValidateJWTSecret(); err != nil {
			panic(err)
		}
	}
	return jwtSecret
}

// generateSubjectToken signs a token whose only claims are the account email
// (sub) and an expiry. Access and refresh tokens share this shape and differ
// only in lifetime.
func generateSubjectToken(email string, expiresIn time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(GetJWTSecret()))
}

// GenerateAccessToken creates a short-lived bearer token for an authenticated user.
func GenerateAccessToken(email string, expiresIn time.Duration) (string, error) {
	if expiresIn == 0 {
		expiresIn = 30 * time.Minute
	}
	return generateSubjectToken(email, expiresIn)
}

// GenerateRefreshToken creates a long-lived token a client exchanges for fresh
// access tokens without re-entering credentials.
func GenerateRefreshToken(email string, expiresIn time.Duration) (string, error) {
	if expiresIn == 0 {
		expiresIn = 7 * 24 * time.Hour
	}
	return generateSubjectToken(email, expiresIn)
}

// ParseSubjectToken validates an access or refresh token and returns the account
// email it was issued for. Expired or tampered tokens return an error.
func ParseSubjectToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// GenerateInviteToken creates the token embedded in invitation accept/cancel
// links. InviteID must be the ID of the stored invite row.
func GenerateInviteToken(email, inviteID string, expiresIn time.Duration) (string, error) {
	if expiresIn == 0 {
		expiresIn = 7 * 24 * time.Hour
	}

	claims := &InviteClaims{
		Email:    email,
		InviteID: inviteID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(GetJWTSecret()))
}

// ParseInviteToken validates an invitation token and returns its claims.
func ParseInviteToken(tokenString string) (*InviteClaims, error) {
	claims := &InviteClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" || claims.InviteID == "" {
		return nil, errors.New("invite token is missing claims")
	}
	return claims, nil
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	// Validate signing method
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return []byte(GetJWTSecret()), nil
}
