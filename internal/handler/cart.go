package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cartDTO())
}

type addCartItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// addCartItem adds a menu item to the cart. A missing or non-positive
// quantity adds one.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.ID == "" {
		h.fail(w, r, invalid("item id is required"))
		return
	}

	it, err := h.catalog.Get(req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !it.IsAvailable {
		h.fail(w, r, invalid(it.Name+" is not available right now"))
		return
	}

	h.cart.Add(r.Context(), it, req.Quantity)
	writeJSON(w, http.StatusOK, h.cartDTO())
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

// updateCartItem sets a line's quantity; zero or less removes the line.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Quantity == nil {
		h.fail(w, r, invalid("quantity is required"))
		return
	}

	h.cart.UpdateQuantity(r.Context(), mux.Vars(r)["id"], *req.Quantity)
	writeJSON(w, http.StatusOK, h.cartDTO())
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	h.cart.Remove(r.Context(), mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, h.cartDTO())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	writeJSON(w, http.StatusOK, h.cartDTO())
}
