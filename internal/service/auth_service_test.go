package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/repository/memory"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuth() (AuthService, *memory.UserRepository, *memory.CoachRepository) {
	users := memory.NewUserRepository()
	coaches := memory.NewCoachRepository()
	return NewAuthService(users, coaches, testSecret, time.Hour), users, coaches
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuth()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Jane Doe", "Jane@Example.com", "secret123", domain.RoleClient)
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(ctx, "Other", "jane@example.com", "x", domain.RoleClient)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, logged, err := svc.Login(ctx, "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.Role)

	_, _, err = svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegisterCoachCreatesProfile(t *testing.T) {
	svc, _, coaches := newAuth()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Anna Maria Smith", "anna@gym.com", "secret123", domain.RoleCoach)
	require.NoError(t, err)

	coach, err := coaches.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", coach.FirstName)
	assert.Equal(t, "Maria Smith", coach.LastName)
	assert.Equal(t, "anna@gym.com", coach.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "", "pw", domain.RoleClient)
	kind, code := Classify(err)
	assert.Equal(t, KindValidation, kind)
	assert.Equal(t, "MISSING_FIELDS", code)

	_, err = svc.Register(ctx, "A", "not-an-email", "pw", domain.RoleClient)
	_, code = Classify(err)
	assert.Equal(t, "INVALID_EMAIL", code)

	_, err = svc.Register(ctx, "A", "a@b.com", "pw", domain.RoleAdmin)
	_, code = Classify(err)
	assert.Equal(t, "INVALID_ROLE", code)
}

func TestEnsureAdmin(t *testing.T) {
	svc, users, _ := newAuth()
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@gym.com", "root"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@gym.com", "root"))

	admin, err := users.GetByEmail(ctx, "admin@gym.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	token, _, err := svc.Login(ctx, "admin@gym.com", "root")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.NoError(t, svc.EnsureAdmin(ctx, "", ""))
}
