package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
	"cityconnect/internal/repository/memstore"
)

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	auth := newAuth(t, store)

	registered, err := auth.Register(ctx, RegisterInput{Name: "Ada", Email: " Ada@Example.org ", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Nil(t, registered.User.PasswordHash)
	assert.Equal(t, models.RoleCitizen, registered.User.Role)
	assert.Equal(t, "ada@example.org", registered.User.Email)

	stored, err := store.Users().FindByEmail(ctx, "ada@example.org")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", string(stored.PasswordHash))

	loggedIn, err := auth.Login(ctx, "ada@example.org", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.Nil(t, loggedIn.User.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t, memstore.New())

	_, err := auth.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, RegisterInput{Name: "Other", Email: "ADA@example.org", Password: "another pass"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	auth := newAuth(t, memstore.New())

	cases := map[string]RegisterInput{
		"missing name":   {Email: "a@example.org", Password: "long enough"},
		"bad email":      {Name: "A", Email: "not-an-email", Password: "long enough"},
		"short password": {Name: "A", Email: "a@example.org", Password: "short"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), input)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestVerifyCredentialsFailures(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t, memstore.New())
	_, err := auth.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"})
	require.NoError(t, err)

	_, err = auth.VerifyCredentials(ctx, "ada@example.org", "wrong horse")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)

	_, err = auth.VerifyCredentials(ctx, "nobody@example.org", "correct horse")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	auth := newAuth(t, store)
	registered, err := auth.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, auth.SetRole(ctx, "ada@example.org", "admin"))
	me, err := auth.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, me.Role)

	assert.ErrorIs(t, auth.SetRole(ctx, "ada@example.org", "superuser"), apperr.ErrValidation)
	assert.ErrorIs(t, auth.SetRole(ctx, "nobody@example.org", "admin"), apperr.ErrNotFound)
}
