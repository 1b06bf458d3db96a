package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbill/m/domain"
)

func TestBootstrapCreatesOwnerOnce(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Auth.Bootstrap(f.ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.svc.Auth.Bootstrap(f.ctx, "admin2", "admin123")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := f.q.GetUserByUsername(f.ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, u.Role)
	assert.NotEqual(t, "admin123", u.PasswordHash)
}

func TestLoginOpensSessionAndLogoutInvalidatesToken(t *testing.T) {
	f := newFixture(t)
	f.state.ClearSession()

	u, err := f.svc.Auth.Register(f.ctx, "Priya", "secret1", "Priya S", domain.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, "priya", u.Username)

	_, _, err = f.svc.Auth.Login(f.ctx, "priya", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.Auth.Login(f.ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, user, err := f.svc.Auth.Login(f.ctx, "PRIYA", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.Equal(t, "priya", f.state.Operator())

	claims, err := f.svc.Auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleEmployee, claims.Role)

	_, err = f.svc.Auth.Authenticate(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	f.svc.Auth.Logout()
	_, err = f.svc.Auth.Authenticate(token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestReloginDoesNotRevivePreviousToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Auth.Register(f.ctx, "meera", "secret1", "", domain.RoleEmployee)
	require.NoError(t, err)

	first, _, err := f.svc.Auth.Login(f.ctx, "meera", "secret1")
	require.NoError(t, err)
	f.svc.Auth.Logout()

	second, _, err := f.svc.Auth.Login(f.ctx, "meera", "secret1")
	require.NoError(t, err)

	_, err = f.svc.Auth.Authenticate(first)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.svc.Auth.Authenticate(second)
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Auth.Register(f.ctx, "ravi", "secret1", "", domain.RoleOwner)
	require.NoError(t, err)

	_, err = f.svc.Auth.Register(f.ctx, "Ravi", "secret1", "", domain.RoleOwner)
	assert.ErrorIs(t, err, domain.ErrValidation, "duplicate username")
	_, err = f.svc.Auth.Register(f.ctx, "new", "short", "", domain.RoleOwner)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.Auth.Register(f.ctx, "new", "secret1", "", "admin")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.Auth.Register(f.ctx, "mohan", "first-pass", "", domain.RoleOwner)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Auth.ChangePassword(f.ctx, u.ID, "nope", "second-pass"), ErrInvalidCredentials)
	require.NoError(t, f.svc.Auth.ChangePassword(f.ctx, u.ID, "first-pass", "second-pass"))

	_, _, err = f.svc.Auth.Login(f.ctx, "mohan", "first-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.Auth.Login(f.ctx, "mohan", "second-pass")
	assert.NoError(t, err)
}
