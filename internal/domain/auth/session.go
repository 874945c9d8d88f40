package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// State is a snapshot of the session as the header bar shows it.
type State struct {
	Authenticated bool `json:"authenticated"`
	Admin         bool `json:"admin"`
}

// Session reads and writes the stored credentials. It keeps no state of its
// own, so changes made through another Session over the same store are seen
// on the next call.
type Session struct {
	repo Repository
	now  func() time.Time
}

// NewSession creates a Session over repo.
func NewSession(repo Repository) *Session {
	return &Session{repo: repo, now: time.Now}
}

// Token returns the stored bearer token, or ErrNotAuthenticated.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.repo.Token(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", ErrNotAuthenticated
	case err != nil:
		return "", errors.Wrap(err, "read token")
	case token == "":
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// IsAuthenticated reports whether a usable token is stored. Tokens that
// parse as a JWT with an expiry in the past are treated as absent; the
// signature is not checked, that is the API's job.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		return false
	}
	return !s.expired(token)
}

func (s *Session) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque token.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}

// User returns the cached user record.
func (s *Session) User(ctx context.Context) (User, error) {
	if !s.IsAuthenticated(ctx) {
		return User{}, ErrNotAuthenticated
	}
	u, err := s.repo.User(ctx)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrNotAuthenticated
	}
	if err != nil {
		return User{}, errors.Wrap(err, "read user")
	}
	return u, nil
}

// IsAdmin reports whether the signed-in user has the admin role.
func (s *Session) IsAdmin(ctx context.Context) bool {
	u, err := s.User(ctx)
	return err == nil && u.IsAdmin()
}

// State returns the current session state.
func (s *Session) State(ctx context.Context) State {
	return State{
		Authenticated: s.IsAuthenticated(ctx),
		Admin:         s.IsAdmin(ctx),
	}
}

// Login signs in through authn and stores the returned credentials.
func (s *Session) Login(ctx context.Context, authn Authenticator, phone, password string) (Credentials, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return Credentials{}, ErrMissingCredentials
	}

	creds, err := authn.Login(ctx, phone, password)
	if err != nil {
		return Credentials{}, err
	}
	if creds.Token == "" {
		// Nothing to keep; the API accepted the login but issued no token.
		return creds, nil
	}

	if err := s.repo.SaveToken(ctx, creds.Token); err != nil {
		return Credentials{}, errors.Wrap(err, "save token")
	}
	if err := s.repo.SaveUser(ctx, creds.User); err != nil {
		// A token without its user would read as signed in with no role.
		if cerr := s.repo.Clear(ctx); cerr != nil {
			return Credentials{}, errors.Wrapf(err, "save user (clear token: %v)", cerr)
		}
		return Credentials{}, errors.Wrap(err, "save user")
	}
	return creds, nil
}

// Logout forgets the stored token and user.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}

// Watch re-reads the session every interval and calls fn with the initial
// state and on every change, until ctx is done. It picks up logins and
// logouts made by other processes sharing the store.
func (s *Session) Watch(ctx context.Context, interval time.Duration, fn func(State)) {
	if interval <= 0 {
		interval = time.Second
	}

	last := s.State(ctx)
	fn(last)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := s.State(ctx)
			if st == last {
				continue
			}
			zctx.From(ctx).Debug("Session state changed",
				zap.Bool("authenticated", st.Authenticated),
				zap.Bool("admin", st.Admin),
			)
			last = st
			fn(st)
		}
	}
}
