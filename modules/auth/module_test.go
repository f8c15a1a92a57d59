package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/taskmanager/apperr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestModule(t *testing.T) *AuthModule {
	t.Helper()
	return NewModule(newTestDB(t), Options{
		JWT:        JWTConfig{SecretKey: "module-secret", TokenDuration: time.Hour, Issuer: "test"},
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())
}

func TestAuthModule_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestModule(t)

	assert.Equal(t, "auth", m.Name())
	require.NoError(t, m.Start(ctx))
	assert.True(t, m.Health(ctx).Healthy)
	require.NoError(t, m.Stop(ctx))
}

func TestAuthModule_StartWithoutDatabase(t *testing.T) {
	m := NewModule(nil, Options{JWT: testJWTConfig(), BcryptCost: bcrypt.MinCost}, zerolog.Nop())
	assert.Error(t, m.Start(context.Background()))
	assert.False(t, m.Health(context.Background()).Healthy)
}

func TestAuthModule_FailuresTravelInReplies(t *testing.T) {
	ctx := context.Background()
	m := newTestModule(t)

	resp, err := m.handleRegister(ctx, RegisterRequest{Email: "bad", Password: "password123"}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Failure)
	assert.Equal(t, apperr.KindValidation, resp.Failure.Kind)
	assert.Nil(t, resp.Result)

	// The kind and field errors survive the JSON round trip of a reply.
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded AuthResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Failure)
	assert.Equal(t, apperr.KindValidation, decoded.Failure.Kind)
	assert.Equal(t, resp.Failure.Fields, decoded.Failure.Fields)

	resp, err = m.handleRegister(ctx, RegisterRequest{Email: "john@example.com", Password: "password123"}, nil)
	require.NoError(t, err)
	require.Nil(t, resp.Failure)
	require.NotNil(t, resp.Result)

	verify, err := m.handleVerifyToken(ctx, VerifyTokenRequest{Token: resp.Result.Token}, nil)
	require.NoError(t, err)
	assert.Nil(t, verify.Failure)
	assert.Equal(t, resp.Result.User.ID, verify.UserID)

	verify, err = m.handleVerifyToken(ctx, VerifyTokenRequest{Token: "garbage"}, nil)
	require.NoError(t, err)
	require.NotNil(t, verify.Failure)
	assert.Equal(t, apperr.KindUnauthenticated, verify.Failure.Kind)

	login, err := m.handleLogin(ctx, LoginRequest{Email: "john@example.com", Password: "nope"}, nil)
	require.NoError(t, err)
	require.NotNil(t, login.Failure)
	assert.Equal(t, apperr.KindUnauthenticated, login.Failure.Kind)

	profile, err := m.handleGetProfile(ctx, GetProfileRequest{UserID: resp.Result.User.ID}, nil)
	require.NoError(t, err)
	assert.Nil(t, profile.Failure)
	assert.Equal(t, "john@example.com", profile.User.Email)

	changed, err := m.handleChangePassword(ctx, ChangePasswordRequest{
		UserID:          resp.Result.User.ID,
		CurrentPassword: "password123",
		NewPassword:     "password456",
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, changed.Failure)
}
