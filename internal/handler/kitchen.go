package handler

import (
	"net/http"

	"github.com/xenking/tiffin-storefront/internal/domain/kitchen"
)

func (h *Handler) getKitchen(w http.ResponseWriter, r *http.Request) {
	p, err := h.kitchen.Get(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) updateKitchen(w http.ResponseWriter, r *http.Request) {
	var p kitchen.Profile
	if err := decodeJSON(r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		h.fail(w, r, invalid(err.Error()))
		return
	}
	if err := h.kitchen.Save(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
