package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/taskmate/go-auth-client/token"
)

const signingSecret = "test-secret"

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()

	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
	require.NoError(t, err)
	return raw
}

func TestDecodeExtractsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwtlib.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})

	claims, err := token.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	require.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestDecodeGarbage(t *testing.T) {
	_, err := token.Decode("not-a-token")
	require.ErrorIs(t, err, token.DecodeErr)
}

func TestExpiredFutureToken(t *testing.T) {
	raw := signedToken(t, jwtlib.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.False(t, token.IsExpired(raw, time.Now()))
}

func TestExpiredPastToken(t *testing.T) {
	raw := signedToken(t, jwtlib.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.True(t, token.IsExpired(raw, time.Now()))
}

func TestExpiredMissingExpClaim(t *testing.T) {
	raw := signedToken(t, jwtlib.MapClaims{"sub": "user-1"})
	require.True(t, token.IsExpired(raw, time.Now()))
}

func TestExpiredUndecodableToken(t *testing.T) {
	require.True(t, token.IsExpired("garbage", time.Now()))
}
