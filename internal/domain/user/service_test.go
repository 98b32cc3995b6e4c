package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhussam/store-api/internal/session"
)

type mockUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byID: map[string]*User{}, byEmail: map[string]*User{}}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]User, error) { return nil, nil }

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, session.NewMemory(), []byte("test-pepper")), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, token, err := svc.Register(ctx, "Salem", "salem@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	// The registration token resolves back to the user.
	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// Fresh login with the same credentials.
	_, token2, err := svc.Login(ctx, "salem@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Salem", "salem@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Other", "salem@example.com", "different")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Salem", "Salem@Example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "salem@example.com", "secret123")
	require.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Salem", "salem@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "salem@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "Salem", "salem@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Authenticate(context.Background(), "not-a-real-token")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
