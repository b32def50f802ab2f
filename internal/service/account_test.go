package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/atinyakov/accountapi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUserRepo is an in-memory UserRepository with case-insensitive keys.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*models.User)}
}

func (m *memoryUserRepo) UserExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[strings.ToLower(username)]
	return ok, nil
}

func (m *memoryUserRepo) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, ok := m.users[key]; ok {
		return models.ErrUserExists
	}
	m.users[key] = user
	return nil
}

func (m *memoryUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(username)]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u, nil
}

// mockUserRepo lets a test script each repository call.
type mockUserRepo struct {
	UserExistsFunc        func(ctx context.Context, username string) (bool, error)
	CreateUserFunc        func(ctx context.Context, user *models.User) error
	GetUserByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockUserRepo) UserExists(ctx context.Context, username string) (bool, error) {
	return m.UserExistsFunc(ctx, username)
}
func (m *mockUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetUserByUsernameFunc(ctx, username)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo())

	cases := []struct{ username, password string }{
		{"Alice", "Secret123!"},
		{"bob", "p"},
		{"Élodie", "mot de passe ü"},
		{"carol", strings.Repeat("x", 1000)},
	}
	for _, tc := range cases {
		t.Run(tc.username, func(t *testing.T) {
			created, err := svc.Register(ctx, tc.username, tc.password)
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tc.username), created.Username)

			got, err := svc.Login(ctx, tc.username, tc.password)
			require.NoError(t, err)
			assert.Equal(t, created.Username, got.Username)
			assert.Equal(t, created.ID, got.ID)
		})
	}
}

func TestRegister_StoresSaltedHash(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo())

	u1, err := svc.Register(ctx, "Alice", "Secret123!")
	require.NoError(t, err)
	u2, err := svc.Register(ctx, "bob", "Secret123!")
	require.NoError(t, err)

	assert.Equal(t, "alice", u1.Username)
	assert.NotEmpty(t, u1.ID)
	assert.NotEqual(t, u1.ID, u2.ID)
	assert.Len(t, u1.PasswordSalt, SaltSize)
	assert.Len(t, u1.PasswordHash, 64)
	assert.False(t, bytes.Equal(u1.PasswordSalt, u2.PasswordSalt), "salts must not be reused")
	assert.False(t, bytes.Equal(u1.PasswordHash, u2.PasswordHash), "same password must hash differently per user")
	assert.False(t, bytes.Contains(u1.PasswordHash, []byte("Secret123!")))
}

func TestRegister_DuplicateCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo())

	_, err := svc.Register(ctx, "Alice", "one")
	require.NoError(t, err)

	for _, name := range []string{"Alice", "alice", "ALICE", "aLiCe"} {
		_, err := svc.Register(ctx, name, "two")
		assert.ErrorIs(t, err, ErrDuplicateUser, name)
	}
}

func TestRegister_InvalidArgument(t *testing.T) {
	svc := NewAccountService(newMemoryUserRepo())

	for _, tc := range []struct{ username, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"alice", ""},
	} {
		_, err := svc.Register(context.Background(), tc.username, tc.password)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestRegister_InsertRaceMapsToDuplicate(t *testing.T) {
	repo := &mockUserRepo{
		UserExistsFunc: func(context.Context, string) (bool, error) { return false, nil },
		CreateUserFunc: func(context.Context, *models.User) error { return models.ErrUserExists },
	}
	_, err := NewAccountService(repo).Register(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestRegister_RepositoryErrors(t *testing.T) {
	dbErr := errors.New("db error")

	t.Run("exists check", func(t *testing.T) {
		repo := &mockUserRepo{
			UserExistsFunc: func(context.Context, string) (bool, error) { return false, dbErr },
		}
		_, err := NewAccountService(repo).Register(context.Background(), "alice", "pw")
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("insert", func(t *testing.T) {
		repo := &mockUserRepo{
			UserExistsFunc: func(context.Context, string) (bool, error) { return false, nil },
			CreateUserFunc: func(context.Context, *models.User) error { return dbErr },
		}
		_, err := NewAccountService(repo).Register(context.Background(), "alice", "pw")
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrDuplicateUser)
	})
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo())
	_, err := svc.Register(ctx, "Alice", "Secret123!")
	require.NoError(t, err)

	cases := []struct {
		name, username, password string
	}{
		{"wrong password", "alice", "wrong"},
		{"password case differs", "alice", "secret123!"},
		{"empty password", "alice", ""},
		{"unknown user", "mallory", "Secret123!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.username, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLogin_CaseInsensitiveUsername(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo())
	_, err := svc.Register(ctx, "Alice", "Secret123!")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "ALICE", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestLogin_RepositoryError(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &mockUserRepo{
		GetUserByUsernameFunc: func(context.Context, string) (*models.User, error) { return nil, dbErr },
	}
	_, err := NewAccountService(repo).Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo())
	_, err := svc.Register(ctx, "Alice", "pw")
	require.NoError(t, err)

	u, err := svc.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
