package repository

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/storage"
)

var _ auth.Repository = (*SessionRepository)(nil)

// SessionRepository stores the bearer token as a raw string under KeyToken
// and the user as JSON under KeyUser.
type SessionRepository struct {
	store storage.Store
	user  document[auth.User]
}

// NewSessionRepository returns a SessionRepository over s.
func NewSessionRepository(s storage.Store) *SessionRepository {
	return &SessionRepository{
		store: s,
		user:  document[auth.User]{store: s, key: KeyUser},
	}
}

func (r *SessionRepository) Token(ctx context.Context) (string, error) {
	data, err := r.store.Get(ctx, KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "get token")
	}
	return string(data), nil
}

func (r *SessionRepository) SaveToken(ctx context.Context, token string) error {
	if err := r.store.Set(ctx, KeyToken, []byte(token)); err != nil {
		return errors.Wrap(err, "set token")
	}
	return nil
}

func (r *SessionRepository) User(ctx context.Context) (auth.User, error) {
	u, err := r.user.load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return auth.User{}, auth.ErrNotFound
	}
	return u, err
}

func (r *SessionRepository) SaveUser(ctx context.Context, u auth.User) error {
	return r.user.save(ctx, u)
}

// Clear removes the token and the user. Both deletes are attempted.
func (r *SessionRepository) Clear(ctx context.Context) error {
	tokenErr := r.store.Delete(ctx, KeyToken)
	userErr := r.user.delete(ctx)
	if tokenErr != nil {
		return errors.Wrap(tokenErr, "delete token")
	}
	return userErr
}
