package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewTokenService("", time.Hour)
		assert.Error(t, err)
	})

	t.Run("defaults lifetime to 30 days", func(t *testing.T) {
		svc, err := NewTokenService("test-secret", 0)
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, svc.Lifetime())
	})

	t.Run("keeps explicit lifetime", func(t *testing.T) {
		svc, err := NewTokenService("test-secret", 2*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, svc.Lifetime())
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	for _, userID := range []uint{1, 42, 4294967295} {
		token, err := svc.Issue(userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		got, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	}
}

func TestTokenVerifyFailures(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(7)
	require.NoError(t, err)

	t.Run("garbage input", func(t *testing.T) {
		_, err := svc.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := svc.Verify("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("mutated signature", func(t *testing.T) {
		mutated := token[:len(token)-2] + "xx"
		_, err := svc.Verify(mutated)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService("another-secret", time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "7",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Verify(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non-numeric subject", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Verify(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenEmbedsExpiry(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(1)
	require.NoError(t, err)

	// Three base64 segments with a real signature
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	assert.NotEmpty(t, parts[2])

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	expected := time.Now().Add(time.Hour)
	assert.WithinDuration(t, expected, claims.ExpiresAt.Time, time.Minute)
}
