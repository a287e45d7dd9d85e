package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habithero/internal/config"
	apperrors "habithero/pkg/errors"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user without exposing hash", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		svc := NewAuthService(userRepo, testJWTConfig(), testLogger())

		user, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Empty(t, user.PasswordHash)

		stored, err := userRepo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.PasswordHash)
		assert.NotEqual(t, "password123", stored.PasswordHash)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		svc := NewAuthService(userRepo, testJWTConfig(), testLogger())

		_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "alice", "other@example.com", "password456")
		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), testJWTConfig(), testLogger())

		_, err := svc.Register(ctx, "bob", "bob@example.com", "short")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), testJWTConfig(), testLogger())

		_, err := svc.Register(ctx, "bob", "not-an-email", "password123")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (AuthService, *fakeUserRepo) {
		t.Helper()
		userRepo := newFakeUserRepo()
		svc := NewAuthService(userRepo, testJWTConfig(), testLogger())
		_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
		require.NoError(t, err)
		return svc, userRepo
	}

	t.Run("returns tokens for valid credentials", func(t *testing.T) {
		svc, _ := setup(t)

		resp, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Empty(t, resp.User.PasswordHash)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Login(ctx, "alice", "wrong-password")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown user looks like bad credentials", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Login(ctx, "nobody", "password123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTConfig(), testLogger())

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	login, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	t.Run("issues fresh pair", func(t *testing.T) {
		resp, err := svc.RefreshToken(ctx, login.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.RefreshToken(ctx, login.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTConfig(), testLogger())

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	login, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	user, err := svc.ValidateToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.ValidateToken(ctx, "garbage")
	assert.Error(t, err)
}
