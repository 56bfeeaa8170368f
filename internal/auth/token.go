package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature,
// expiry, malformed input. The cases are deliberately not distinguished
// so callers cannot leak which one occurred.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies credential tokens. The signing secret
// is injected at construction rather than read from process state, which
// keeps the codec testable in isolation.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService creates a token service.
// lifetime defaults to 30 days if zero.
func NewTokenService(secret string, lifetime time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret must not be empty")
	}
	if lifetime <= 0 {
		lifetime = 30 * 24 * time.Hour
	}
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
	}, nil
}

// Issue creates a signed token embedding the user ID with an absolute
// expiry of now + lifetime. Pure function of (userID, clock, secret).
func (s *TokenService) Issue(userID uint) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user ID.
// Any failure returns ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}

	return uint(userID), nil
}

// Lifetime returns the configured token lifetime. The cookie max-age must
// match it so both channels expire together.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}
