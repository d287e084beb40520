package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the JWT claims of a session issued by the resolver.
// Anonymous marks throwaway sessions; they can read public data but are
// refused by the middleware before any state-persisting handler runs.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anon,omitempty"`
	jwt.RegisteredClaims
}

// jwtSecret is set once at startup from configuration; the env fallback
// keeps `go test` and local development working without a config file.
var jwtSecret []byte

// SetJWTSecret installs the signing secret for session tokens
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func getJWTSecret() []byte {
	if len(jwtSecret) > 0 {
		return jwtSecret
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Default for development only - should be set in production
		secret = "watercup-dev-secret-change-in-production"
	}
	return []byte(secret)
}

// getTokenDuration returns the token validity duration
func getTokenDuration() time.Duration {
	// Default to 24 hours
	return 24 * time.Hour
}

// GenerateToken creates a new JWT session token for a user
func GenerateToken(userID string, email string) (string, error) {
	return generate(&Claims{UserID: userID, Email: email})
}

// GenerateAnonymousToken creates a session token for an anonymous visitor.
// Such sessions exist so a deep link to a group page can render at all;
// they are never allowed to persist state.
func GenerateAnonymousToken(userID string) (string, error) {
	return generate(&Claims{UserID: userID, Anonymous: true})
}

func generate(claims *Claims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(getTokenDuration())),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "watercup",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTSecret())
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return getJWTSecret(), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
