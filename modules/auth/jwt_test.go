package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: 24 * time.Hour,
		Issuer:        "test-issuer",
	}
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	token, expiresAt, err := manager.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTManager_UniqueTokenIDs(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	a, _, err := manager.Generate("user-1")
	require.NoError(t, err)
	b, _, err := manager.Generate("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	issued := time.Now()
	manager.now = func() time.Time { return issued }

	token, _, err := manager.Generate("user-123")
	require.NoError(t, err)

	manager.now = func() time.Time { return issued.Add(24*time.Hour + time.Second) }
	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	manager.now = func() time.Time { return issued.Add(24*time.Hour - time.Minute) }
	_, err = manager.Validate(token)
	assert.NoError(t, err)
}

func TestJWTManager_InvalidTokens(t *testing.T) {
	config := testJWTConfig()
	manager := NewJWTManager(config)

	valid, _, err := manager.Generate("user-123")
	require.NoError(t, err)

	otherSecret := config
	otherSecret.SecretKey = "another-secret"
	foreign, _, err := NewJWTManager(otherSecret).Generate("user-123")
	require.NoError(t, err)

	otherIssuer := config
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, _, err := NewJWTManager(otherIssuer).Generate("user-123")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    config.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-123",
		Issuer:  config.Issuer,
	}).SignedString([]byte(config.SecretKey))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    config.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(config.SecretKey))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "tampered signature", token: tampered},
		{name: "wrong secret", token: foreign},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "alg none", token: noneToken},
		{name: "missing expiry", token: noExpiry},
		{name: "missing subject", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
