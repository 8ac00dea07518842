package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/restaurant-pos/internal/domain/actor"
)

const testSecret = "test-secret-key-at-least-32-chars!!"

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, expiresAt, err := svc.GenerateToken("user-1", "Ana", actor.RoleCashier)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, string(actor.RoleCashier), claims.Role)
}

func TestClaims_Actor(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, _, err := svc.GenerateToken("user-2", "Luis", actor.RoleWaiter)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	act := claims.Actor()
	assert.Equal(t, actor.Actor{ID: "user-2", Name: "Luis", Role: actor.RoleWaiter}, act)
	assert.True(t, act.Is(actor.RoleWaiter, actor.RoleAdmin))
	assert.False(t, act.Is(actor.RoleKitchen))
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(testSecret, -time.Minute)

	token, _, err := svc.GenerateToken("user-1", "Ana", actor.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	other := NewJWTService("another-secret-key-of-32-characters", time.Hour)

	token, _, err := svc.GenerateToken("user-1", "Ana", actor.RoleAdmin)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
