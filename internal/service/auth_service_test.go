package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/order-manager/internal/auth"
	"github.com/spec-kit/order-manager/internal/config"
	"github.com/spec-kit/order-manager/internal/domain"
	"github.com/spec-kit/order-manager/internal/events"
	"github.com/spec-kit/order-manager/internal/service"
	apperrors "github.com/spec-kit/order-manager/pkg/util/errorutil"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-signing-key",
		AccessTokenTTLSeconds: 900,
		BcryptCost:            4,
	}
}

func TestRegister(t *testing.T) {
	users := newMemUserRepo()
	dispatcher := &captureDispatcher{}
	svc := service.NewAuthService(testAuthConfig(), users, dispatcher)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "good-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "good-pw", user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "good-pw"))

	registered := dispatcher.byType(events.EventUserRegistered)
	require.Len(t, registered, 1)
	assert.Equal(t, "alice", registered[0].Subject)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := newMemUserRepo()
	svc := service.NewAuthService(testAuthConfig(), users, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "good-pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "other-pw")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestLogin(t *testing.T) {
	users := newMemUserRepo()
	svc := service.NewAuthService(testAuthConfig(), users, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "good-pw")
	require.NoError(t, err)

	user, token, expiresAt, err := svc.Login(ctx, "alice", "good-pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.TokenManager().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestLoginFailureIsUniform(t *testing.T) {
	users := newMemUserRepo()
	svc := service.NewAuthService(testAuthConfig(), users, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "good-pw")
	require.NoError(t, err)

	_, _, _, wrongPw := svc.Login(ctx, "alice", "bad-pw")
	_, _, _, unknownUser := svc.Login(ctx, "nobody", "good-pw")

	assert.ErrorIs(t, wrongPw, service.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, service.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknownUser.Error())
}

func TestChangePassword(t *testing.T) {
	users := newMemUserRepo()
	svc := service.NewAuthService(testAuthConfig(), users, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "good-pw")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "bad-pw", "new-pw")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "good-pw", "new-pw"))

		_, _, _, err := svc.Login(ctx, "alice", "good-pw")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		_, _, _, err = svc.Login(ctx, "alice", "new-pw")
		assert.NoError(t, err)
	})
}
