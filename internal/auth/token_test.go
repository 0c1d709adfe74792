package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestTokenManager_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tokens := NewTokenManager("test-secret", time.Hour, WithClock(clock.Now))

	signed, issued, err := tokens.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)

	principal := claims.Principal()
	assert.Equal(t, uint64(42), principal.UserID)
	assert.Equal(t, issued.ID, principal.TokenID)
	assert.True(t, clock.now.Add(time.Hour).Equal(principal.ExpiresAt))
	assert.Equal(t, time.UTC, principal.ExpiresAt.Location())

	// still valid just before the hour is up
	clock.now = clock.now.Add(59 * time.Minute)
	_, err = tokens.Parse(signed)
	require.NoError(t, err)
}

func TestTokenManager_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tokens := NewTokenManager("test-secret", time.Hour, WithClock(clock.Now))

	signed, _, err := tokens.Issue(7)
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Hour + time.Second)
	_, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignSignatures(t *testing.T) {
	issuer := NewTokenManager("other-secret", time.Hour)
	verifier := NewTokenManager("test-secret", time.Hour)

	signed, _, err := issuer.Issue(1)
	require.NoError(t, err)

	_, err = verifier.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsUnexpectedAlgorithm(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_MalformedAndMissing(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	_, err := tokens.Parse("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = tokens.Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RequiresExpiry(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 3}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRedisRevocationStore_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisRevocationStore(client)

	// expired tokens never reach redis
	require.NoError(t, store.Revoke(context.Background(), "jti", 0))

	_, err := store.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}
