package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/services/auth-service/internal/models"
)

func validRegistration() RegisterOwnerInput {
	return RegisterOwnerInput{
		NIC:         "200012345678",
		FirstName:   "Nimal",
		LastName:    "Perera",
		Email:       "nimal@example.com",
		PhoneNumber: "+94 77 123 4567",
		Address:     "12 Galle Road, Colombo 03",
		Password:    "secret1",
	}
}

func TestValidNIC(t *testing.T) {
	for _, nic := range []string{"123456789V", "123456789v", "123456789X", "200012345678"} {
		assert.True(t, ValidNIC(nic), nic)
	}
	for _, nic := range []string{"", "12345678V", "123456789A", "20001234567", "2000123456789", "123456789VV"} {
		assert.False(t, ValidNIC(nic), nic)
	}
}

func TestOwnerService_RegisterAndLogin(t *testing.T) {
	repo := newFakeOwnerRepo()
	svc := newTestOwnerService(repo)
	ctx := context.Background()

	owner, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.True(t, owner.IsActive)
	assert.False(t, owner.RequiresReactivation)
	assert.Equal(t, fixedNow, owner.CreatedAt)

	res, err := svc.Login(ctx, "200012345678", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Nimal Perera", res.Name)
	assert.Equal(t, auth.RoleEVOwner, res.Role)

	id, err := testTokens().ValidateToken(res.Token)
	require.NoError(t, err)
	assert.True(t, id.Owns("200012345678"))

	_, err = svc.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestOwnerService_RegisterValidation(t *testing.T) {
	svc := newTestOwnerService(newFakeOwnerRepo())
	mutators := map[string]func(*RegisterOwnerInput){
		"nic":        func(in *RegisterOwnerInput) { in.NIC = "12345" },
		"first name": func(in *RegisterOwnerInput) { in.FirstName = " " },
		"last name":  func(in *RegisterOwnerInput) { in.LastName = "" },
		"email":      func(in *RegisterOwnerInput) { in.Email = "nimal.example.com" },
		"phone":      func(in *RegisterOwnerInput) { in.PhoneNumber = "call me" },
		"password":   func(in *RegisterOwnerInput) { in.Password = "12345" },
	}
	for name, mutate := range mutators {
		t.Run(name, func(t *testing.T) {
			in := validRegistration()
			mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestOwnerService_DeactivateBlocksLoginUntilActivated(t *testing.T) {
	repo := newFakeOwnerRepo()
	svc := newTestOwnerService(repo)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, "200012345678"))
	owner, err := svc.Get(ctx, "200012345678")
	require.NoError(t, err)
	assert.False(t, owner.IsActive)
	assert.True(t, owner.RequiresReactivation)

	_, err = svc.Login(ctx, "200012345678", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pending, err := svc.ReactivationRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "200012345678", pending[0].NIC)

	require.NoError(t, svc.Activate(ctx, "200012345678"))
	owner, err = svc.Get(ctx, "200012345678")
	require.NoError(t, err)
	assert.True(t, owner.IsActive)
	assert.False(t, owner.RequiresReactivation)

	_, err = svc.Login(ctx, "200012345678", "secret1")
	assert.NoError(t, err)

	pending, err = svc.ReactivationRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOwnerService_LoginRefusesFlagMismatch(t *testing.T) {
	repo := newFakeOwnerRepo(models.EVOwner{
		NIC: "123456789V", FirstName: "Kamala", PasswordHash: mustHash(t, "secret1"),
		IsActive: true, RequiresReactivation: true,
	})
	svc := newTestOwnerService(repo)

	_, err := svc.Login(context.Background(), "123456789V", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOwnerService_UpdatePartial(t *testing.T) {
	repo := newFakeOwnerRepo()
	svc := newTestOwnerService(repo)
	ctx := context.Background()
	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	owner, err := svc.Update(ctx, "200012345678", UpdateOwnerInput{
		Address:  optional.Of(""),
		Password: optional.Of("changed1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "", owner.Address)
	assert.Equal(t, "Nimal", owner.FirstName)
	assert.Equal(t, registered.Email, owner.Email)
	assert.NoError(t, testHasher().Compare(owner.PasswordHash, "changed1"))

	_, err = svc.Update(ctx, "200012345678", UpdateOwnerInput{PhoneNumber: optional.Of("12")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, "200012345678", UpdateOwnerInput{Password: optional.Of("123")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, "999999999V", UpdateOwnerInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOwnerService_DeleteAndMissing(t *testing.T) {
	svc := newTestOwnerService(newFakeOwnerRepo(models.EVOwner{NIC: "123456789V"}))
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "123456789V"))
	assert.ErrorIs(t, svc.Delete(ctx, "123456789V"), ErrNotFound)
	assert.ErrorIs(t, svc.Activate(ctx, "123456789V"), ErrNotFound)
	_, err := svc.Get(ctx, "123456789V")
	assert.ErrorIs(t, err, ErrNotFound)
}
