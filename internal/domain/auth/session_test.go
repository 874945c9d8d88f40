package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	mu    sync.Mutex
	token *string
	user  *User
	err   error
	// userErr fails SaveUser only.
	userErr error
}

func (m *mockRepo) Token(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.token == nil {
		return "", ErrNotFound
	}
	return *m.token, nil
}

func (m *mockRepo) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = &token
	return m.err
}

func (m *mockRepo) User(_ context.Context) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, ErrNotFound
	}
	return *m.user, nil
}

func (m *mockRepo) SaveUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userErr != nil {
		return m.userErr
	}
	m.user = &u
	return nil
}

func (m *mockRepo) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = nil, nil
	return nil
}

type mockAuthenticator struct {
	creds Credentials
	err   error
	calls int
}

func (m *mockAuthenticator) Login(_ context.Context, _, _ string) (Credentials, error) {
	m.calls++
	return m.creds, m.err
}

// --- Helpers ---

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// --- Tests ---

func TestSession_LoginStoresCredentials(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	s := NewSession(repo)
	authn := &mockAuthenticator{creds: Credentials{
		Token: "opaque-token",
		User:  User{ID: "42", FullName: "Asha", Role: RoleAdmin},
	}}

	_, err := s.Login(ctx, authn, " 9876543210 ", "secret")
	require.NoError(t, err)

	assert.True(t, s.IsAuthenticated(ctx))
	assert.True(t, s.IsAdmin(ctx))
	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.FullName)

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", tok)
}

func TestSession_LoginMissingCredentials(t *testing.T) {
	authn := &mockAuthenticator{}
	_, err := NewSession(&mockRepo{}).Login(context.Background(), authn, "  ", "x")
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, authn.calls)
}

func TestSession_LoginRollsBackTokenWhenUserNotSaved(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{userErr: errors.New("disk full")}
	s := NewSession(repo)
	authn := &mockAuthenticator{creds: Credentials{Token: "opaque-token", User: User{ID: "42"}}}

	_, err := s.Login(ctx, authn, "9876543210", "secret")
	require.Error(t, err)

	assert.Nil(t, repo.token)
	assert.False(t, s.IsAuthenticated(ctx))
	_, err = s.Token(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSession_LoginFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	s := NewSession(repo)

	_, err := s.Login(ctx, &mockAuthenticator{err: errors.New("Invalid credentials")}, "1", "2")
	require.EqualError(t, err, "Invalid credentials")
	assert.False(t, s.IsAuthenticated(ctx))
	assert.Nil(t, repo.token)
}

func TestSession_Logout(t *testing.T) {
	ctx := context.Background()
	tok := "t"
	repo := &mockRepo{token: &tok, user: &User{ID: "1"}}
	s := NewSession(repo)
	require.True(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated(ctx))
	_, err := s.Token(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = s.User(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSession_TokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   bool
	}{
		{"future exp", jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}, true},
		{"past exp", jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}, false},
		{"no exp", jwt.MapClaims{"sub": "1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := signedToken(t, tt.claims)
			s := NewSession(&mockRepo{token: &tok})
			s.now = func() time.Time { return now }
			assert.Equal(t, tt.want, s.IsAuthenticated(context.Background()))
		})
	}
}

func TestSession_EmptyToken(t *testing.T) {
	empty := ""
	s := NewSession(&mockRepo{token: &empty})
	assert.False(t, s.IsAuthenticated(context.Background()))
}

func TestSession_NonAdmin(t *testing.T) {
	tok := "t"
	s := NewSession(&mockRepo{token: &tok, user: &User{ID: "1", Role: "customer"}})
	assert.True(t, s.IsAuthenticated(context.Background()))
	assert.False(t, s.IsAdmin(context.Background()))
}

func TestSession_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &mockRepo{}
	s := NewSession(repo)

	states := make(chan State, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Watch(ctx, 5*time.Millisecond, func(st State) { states <- st })
	}()

	assert.Equal(t, State{}, <-states)

	require.NoError(t, repo.SaveToken(ctx, "t"))
	require.NoError(t, repo.SaveUser(ctx, User{ID: "1", Role: RoleAdmin}))

	require.Eventually(t, func() bool {
		select {
		case st := <-states:
			return st.Authenticated && st.Admin
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
