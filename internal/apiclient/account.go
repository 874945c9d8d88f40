package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
)

var (
	_ auth.Authenticator   = (*Client)(nil)
	_ order.ProfileUpdater = (*Client)(nil)
)

// Login exchanges a phone number and password for a token.
func (c *Client) Login(ctx context.Context, phone, password string) (auth.Credentials, error) {
	body, err := c.do(ctx, call{
		op:       "login",
		method:   http.MethodPost,
		path:     "/login",
		fallback: "Login failed",
		body: map[string]string{
			"phone":    phone,
			"password": password,
		},
	})
	if err != nil {
		return auth.Credentials{}, err
	}

	var creds auth.Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return auth.Credentials{}, errors.Wrap(err, "login: decode response")
	}
	return creds, nil
}

// Registration is the sign-up form.
type Registration struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

// Validate checks the fields the API always requires.
func (r Registration) Validate() error {
	switch {
	case r.FullName == "":
		return errors.New("full name is required")
	case r.Phone == "":
		return errors.New("phone is required")
	case r.Password == "":
		return errors.New("password is required")
	}
	return nil
}

// Registered is the API's answer to a registration.
type Registered struct {
	Message string     `json:"message,omitempty"`
	User    *auth.User `json:"user,omitempty"`
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, r Registration) (Registered, error) {
	body, err := c.do(ctx, call{
		op:       "register",
		method:   http.MethodPost,
		path:     "/register",
		fallback: "Registration failed",
		body:     r,
	})
	if err != nil {
		return Registered{}, err
	}

	var resp struct {
		Message string     `json:"message"`
		User    *auth.User `json:"user"`
		Data    *auth.User `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Registered{}, errors.Wrap(err, "register: decode response")
	}
	out := Registered{Message: resp.Message, User: resp.User}
	if out.User == nil {
		out.User = resp.Data
	}
	return out, nil
}

// Profile returns the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (auth.User, error) {
	body, err := c.do(ctx, call{
		op:       "get profile",
		method:   http.MethodGet,
		path:     "/profile",
		bearer:   true,
		fallback: "Failed to fetch profile",
	})
	if err != nil {
		return auth.User{}, err
	}

	var u auth.User
	if err := decodeData("get profile", body, &u); err != nil {
		return auth.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the editable profile fields. Empty fields are not
// sent.
type ProfileUpdate struct {
	FullName string `json:"full_name,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

// UpdateProfile changes the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) error {
	_, err := c.do(ctx, call{
		op:       "update profile",
		method:   http.MethodPut,
		path:     "/profile",
		bearer:   true,
		fallback: "Failed to update profile",
		body:     p,
	})
	return err
}

// UpdateAddress stores address on the signed-in user's profile.
func (c *Client) UpdateAddress(ctx context.Context, address string) error {
	return c.UpdateProfile(ctx, ProfileUpdate{Address: address})
}

// MyOrders returns the signed-in user's order history.
func (c *Client) MyOrders(ctx context.Context) ([]order.Record, error) {
	body, err := c.do(ctx, call{
		op:       "my orders",
		method:   http.MethodGet,
		path:     "/my-order",
		bearer:   true,
		fallback: "Failed to fetch orders",
	})
	if err != nil {
		return nil, err
	}

	orders := []order.Record{}
	if err := decodeData("my orders", body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
