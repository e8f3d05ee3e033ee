package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/libs/password"
	"xpointconnect/backend/services/auth-service/internal/models"
)

func TestUserService_CreateAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{
		Username: " operator1 ",
		Email:    "operator1@xpoint.lk",
		Password: "Operator123!",
		Role:     auth.RoleStationOperator,
	})
	require.NoError(t, err)
	assert.Equal(t, "operator1", user.Username)
	assert.True(t, user.IsActive)
	assert.Equal(t, fixedNow, user.CreatedAt)
	assert.NotEqual(t, "Operator123!", user.PasswordHash)

	res, err := svc.Login(ctx, "operator1", "Operator123!")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, user.ID, res.Subject)

	id, err := testTokens().ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{Subject: user.ID, Role: auth.RoleStationOperator, Name: "operator1"}, id)
}

func TestUserService_CreateValidation(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())
	ctx := context.Background()

	cases := map[string]CreateUserInput{
		"missing username": {Email: "a@b.lk", Password: "secret1", Role: auth.RoleBackOffice},
		"bad email":        {Username: "a", Email: "not-an-email", Password: "secret1", Role: auth.RoleBackOffice},
		"short password":   {Username: "a", Email: "a@b.lk", Password: "12345", Role: auth.RoleBackOffice},
		"owner role":       {Username: "a", Email: "a@b.lk", Password: "secret1", Role: auth.RoleEVOwner},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_CreateDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo(models.User{ID: "u-1", Username: "admin", IsActive: true, Role: auth.RoleBackOffice})
	svc := newTestUserService(repo)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Username: "admin", Email: "admin@xpoint.lk", Password: "Admin123!", Role: auth.RoleBackOffice,
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUserService_LoginFailures(t *testing.T) {
	repo := newFakeUserRepo(
		models.User{ID: "u-1", Username: "admin", PasswordHash: mustHash(t, "Admin123!"), Role: auth.RoleBackOffice, IsActive: true},
		models.User{ID: "u-2", Username: "retired", PasswordHash: mustHash(t, "Retired1!"), Role: auth.RoleBackOffice},
	)
	reg := prometheus.NewRegistry()
	svc := NewUserService(repo, testHasher(), testTokens(), NewMetrics(reg), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "Admin123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "retired", "Retired1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, 4.0, testutil.ToFloat64(svc.metrics.logins.WithLabelValues("staff", "failure")))
}

func TestUserService_UpdatePartial(t *testing.T) {
	original := mustHash(t, "Admin123!")
	repo := newFakeUserRepo(models.User{ID: "u-1", Username: "admin", Email: "admin@xpoint.lk", PasswordHash: original, Role: auth.RoleBackOffice, IsActive: true})
	svc := newTestUserService(repo)
	ctx := context.Background()

	user, err := svc.Update(ctx, "u-1", UpdateUserInput{IsActive: optional.Of(false)})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, original, user.PasswordHash)
	assert.Equal(t, fixedNow, user.UpdatedAt)

	user, err = svc.Update(ctx, "u-1", UpdateUserInput{Password: optional.Of("NewPass1!")})
	require.NoError(t, err)
	assert.NoError(t, testHasher().Compare(user.PasswordHash, "NewPass1!"))

	_, err = svc.Update(ctx, "u-1", UpdateUserInput{Email: optional.Of("")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, "missing", UpdateUserInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_GetAndDelete(t *testing.T) {
	repo := newFakeUserRepo(models.User{ID: "u-1", Username: "admin", Role: auth.RoleBackOffice})
	svc := newTestUserService(repo)
	ctx := context.Background()

	user, err := svc.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	require.NoError(t, svc.Delete(ctx, "u-1"))
	_, err = svc.Get(ctx, "u-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u-1"), ErrNotFound)
}

func TestUserService_LoginUpgradesStaleHashCost(t *testing.T) {
	stale := mustHash(t, "Admin123!")
	repo := newFakeUserRepo(models.User{ID: "u-1", Username: "admin", PasswordHash: stale, Role: auth.RoleBackOffice, IsActive: true})
	svc := NewUserService(repo, password.NewBcryptHasher(5), testTokens(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), "admin", "Admin123!")
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotEqual(t, stale, stored.PasswordHash)
	assert.False(t, password.NewBcryptHasher(5).NeedsRehash(stored.PasswordHash))
	assert.NoError(t, testHasher().Compare(stored.PasswordHash, "Admin123!"))
}
