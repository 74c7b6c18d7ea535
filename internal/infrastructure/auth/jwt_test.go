package auth

import (
	"testing"
	"time"

	"github.com/craftshop/backend/internal/domain/identity"
	"github.com/craftshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestJWTService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-signing",
		AccessTokenExpiration: expiration,
		Issuer:                "craftshop-test",
	})
}

func createTestUser(t *testing.T) *identity.User {
	user, err := identity.NewUser("Mona", "mona@example.com", identity.RoleUser)
	require.NoError(t, err)
	return user
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := createTestJWTService(time.Hour)
	user := createTestUser(t)

	token, expiresAt, err := service.GenerateToken(user)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
}

func TestJWTService_ValidateToken(t *testing.T) {
	t.Run("round-trips claims", func(t *testing.T) {
		service := createTestJWTService(time.Hour)
		user := createTestUser(t)

		token, _, err := service.GenerateToken(user)
		require.NoError(t, err)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)

		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, identity.RoleUser, claims.Role)

		subject, err := claims.SubjectUUID()
		require.NoError(t, err)
		assert.Equal(t, user.ID, subject)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		service := createTestJWTService(-time.Minute)
		user := createTestUser(t)

		token, _, err := service.GenerateToken(user)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		service := createTestJWTService(time.Hour)
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret",
			AccessTokenExpiration: time.Hour,
			Issuer:                "craftshop-test",
		})
		user := createTestUser(t)

		token, _, err := other.GenerateToken(user)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		service := createTestJWTService(time.Hour)
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}
