package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("utils-test-secret")

	tok, err := GenerateToken("user-9", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	SetJWTSecret("utils-test-secret")

	expired, err := GenerateToken("user-9", "admin", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	// no expiry
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{UserID: "u"}).SignedString([]byte("utils-test-secret"))
	require.NoError(t, err)
	_, err = ParseToken(noExp)
	assert.Error(t, err)

	// wrong key
	SetJWTSecret("other")
	good, err := GenerateToken("user-9", "admin", time.Hour)
	require.NoError(t, err)
	SetJWTSecret("utils-test-secret")
	_, err = ParseToken(good)
	assert.Error(t, err)

	// missing user id
	anon, err := GenerateToken("", "admin", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(anon)
	assert.Error(t, err)
}
