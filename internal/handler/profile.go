package handler

import (
	"net/http"

	"github.com/xenking/tiffin-storefront/internal/apiclient"
)

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		h.fail(w, r, errOffline)
		return
	}
	u, err := h.account.Profile(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// updateProfile saves the editable profile fields and returns the profile
// as the kitchen API now has it.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		h.fail(w, r, errOffline)
		return
	}
	var req apiclient.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req == (apiclient.ProfileUpdate{}) {
		h.fail(w, r, invalid("nothing to update"))
		return
	}

	ctx := r.Context()
	if err := h.account.UpdateProfile(ctx, req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.account.Profile(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// profileOrders lists the customer's orders. Offline it lists the local
// book instead.
func (h *Handler) profileOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.Online() {
		orders, err := h.book.List(ctx)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, localOrdersDTO(orders))
		return
	}

	records, err := h.account.MyOrders(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsDTO(records))
}
