package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/models"
	"cityconnect/internal/queue"
	"cityconnect/internal/repository/memstore"
	"cityconnect/internal/security"
)

var (
	citizen = security.Principal{UserID: "citizen-1", Role: models.RoleCitizen}
	admin   = security.Principal{UserID: "admin-1", Role: models.RoleAdmin}
)

var fastArgon = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func newTokens(t *testing.T) *security.TokenManager {
	t.Helper()
	tokens, err := security.NewTokenManager([]string{"test:secret-for-tests"}, time.Hour)
	require.NoError(t, err)
	return tokens
}

func newAuth(t *testing.T, store *memstore.Store) *AuthService {
	t.Helper()
	svc := NewAuthService(store.Users(), newTokens(t), zerolog.Nop())
	svc.hashPassword = func(p string) ([]byte, error) {
		return security.HashPasswordWithParams(p, fastArgon)
	}
	return svc
}

// seedUser stores a user directly so content can carry an author name.
func seedUser(t *testing.T, store *memstore.Store, p security.Principal, name string) {
	t.Helper()
	_, err := store.Users().Create(context.Background(), models.User{
		ID:    p.UserID,
		Name:  name,
		Email: p.UserID + "@example.org",
		Role:  p.Role,
	})
	require.NoError(t, err)
}

type mockTaskQueue struct {
	mock.Mock
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, task queue.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, msg models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
