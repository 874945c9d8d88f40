package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tiffin-storefront/internal/apiclient"
	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

// errOffline is returned by endpoints that need the kitchen API when the
// storefront runs without one.
var errOffline = errors.New("not available in offline mode")

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// inputError is a request the handler rejects before doing any work.
type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func invalid(msg string) error { return &inputError{msg: msg} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Error{Code: status, Message: msg})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalid("request body is empty")
		}
		return invalid("malformed JSON body")
	}
	return nil
}

// fail maps err to a status code and writes it.
//
// Rejected input is 400, missing resources 404 and a missing session 401.
// Kitchen API errors keep their 4xx status and become 502 otherwise; a 401
// from the API also ends the local session. Anything else is logged and
// reported as 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	lg := zctx.From(ctx)

	var (
		inErr  *inputError
		valErr *order.ValidationError
		apiErr *apiclient.Error
	)
	switch {
	case errors.As(err, &inErr), errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "Your cart is empty")
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Please enter phone and password")
	case errors.Is(err, order.ErrCheckoutInProgress):
		writeError(w, http.StatusConflict, "Order is already being placed")
	case errors.Is(err, auth.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, menu.ErrNotFound):
		writeError(w, http.StatusNotFound, "Menu item not found")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, errOffline):
		writeError(w, http.StatusServiceUnavailable, "Kitchen API is not available in offline mode")
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized {
			if lerr := h.session.Logout(ctx); lerr != nil {
				lg.Warn("Failed to clear rejected session", zap.Error(lerr))
			}
			writeError(w, http.StatusUnauthorized, apiErr.Message)
			return
		}
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		lg.Warn("Kitchen API error",
			zap.String("op", apiErr.Op),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		writeError(w, status, apiErr.Message)
	default:
		lg.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
