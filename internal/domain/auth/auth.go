// Package auth tracks the signed-in customer: the bearer token issued by the
// kitchen API and the user record returned with it.
package auth

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/tiffin-storefront/internal/jsonx"
)

// RoleAdmin is the role that unlocks the back-office.
const RoleAdmin = "admin"

var (
	// ErrNotAuthenticated is returned when an operation needs a token and
	// none is stored.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound is returned by a Repository for a missing token or user.
	ErrNotFound = errors.New("session value not found")
	// ErrMissingCredentials is returned by Login for a blank phone or
	// password.
	ErrMissingCredentials = errors.New("phone and password are required")
)

// User is the account record the kitchen API returns.
type User struct {
	ID       jsonx.ID `json:"id"`
	FullName string   `json:"full_name"`
	Phone    string   `json:"phone"`
	Email    string   `json:"email,omitempty"`
	Role     string   `json:"role,omitempty"`
	Address  string   `json:"address,omitempty"`
	City     string   `json:"city,omitempty"`
	Pincode  string   `json:"pincode,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// IsAdmin reports whether u has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credentials is the result of a successful login.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Authenticator exchanges a phone number and password for Credentials.
type Authenticator interface {
	Login(ctx context.Context, phone, password string) (Credentials, error)
}

// Repository persists the session.
type Repository interface {
	// Token returns ErrNotFound when no token is stored.
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	// User returns ErrNotFound when no user is stored.
	User(ctx context.Context) (User, error)
	SaveUser(ctx context.Context, u User) error
	// Clear removes both the token and the user.
	Clear(ctx context.Context) error
}
