package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tiffin-storefront/internal/apiclient"
	"github.com/xenking/tiffin-storefront/internal/domain/auth"
)

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// login signs in against the kitchen API and keeps the issued token.
// Admins are sent to the back-office, everyone else to the home page.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		h.fail(w, r, errOffline)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	creds, err := h.session.Login(ctx, h.account, req.Phone, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user := creds.User
	resp := sessionJSON{
		State:    h.session.State(ctx),
		User:     &user,
		Redirect: "/",
	}
	if resp.Admin {
		resp.Redirect = "/admin"
	}
	zctx.From(ctx).Info("Signed in",
		zap.String("user_id", user.ID.String()),
		zap.Bool("admin", resp.Admin),
	)
	writeJSON(w, http.StatusOK, resp)
}

type registerResponse struct {
	Message string     `json:"message"`
	User    *auth.User `json:"user,omitempty"`
}

// register creates an account. The customer still has to sign in.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		h.fail(w, r, errOffline)
		return
	}
	var req apiclient.Registration
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, invalid(err.Error()))
		return
	}

	res, err := h.account.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := res.Message
	if msg == "" {
		msg = "Registration successful"
	}
	writeJSON(w, http.StatusCreated, registerResponse{Message: msg, User: res.User})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionJSON{Redirect: "/"})
}

// status reports whether a customer is signed in, for the header bar.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := sessionJSON{State: h.session.State(ctx)}
	if u, err := h.session.User(ctx); err == nil {
		resp.User = &u
	} else if !errors.Is(err, auth.ErrNotAuthenticated) {
		zctx.From(ctx).Warn("Failed to read session user", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, resp)
}
