package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: 24})

	token, issued, err := util.GenerateToken(42, "mentor")
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "mentor", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.InDelta(t, (24 * time.Hour).Seconds(), claims.ExpiresIn(time.Now()).Seconds(), 5)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: 1})
	util.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := util.GenerateToken(1, "mentee")
	require.NoError(t, err)

	_, err = util.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewJWTUtil(&JWTConfig{SigningKey: "one", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "two", ExpirationHours: 1})

	token, _, err := issuer.GenerateToken(1, "mentee")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: 1})

	claims := UserClaims{UserID: 1, Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = util.ValidateToken(token)
	require.Error(t, err)
}

func TestDefaultExpiration(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret"})
	_, claims, err := util.GenerateToken(1, "mentee")
	require.NoError(t, err)
	assert.InDelta(t, (24 * time.Hour).Seconds(), claims.ExpiresIn(time.Now()).Seconds(), 5)
}
