package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/xenking/tiffin-storefront/internal/domain/menu"
)

type favoritesResponse struct {
	IDs   []string   `json:"ids"`
	Items []itemJSON `json:"items"`
}

// listFavorites returns the favorite ids and the menu items they resolve
// to. Ids no longer on the menu are kept but have no item.
func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	h.catalog.Hydrate(r.Context())

	ids := h.favorites.IDs()
	items := make([]menu.Item, 0, len(ids))
	for _, id := range ids {
		if it, err := h.catalog.Get(id); err == nil {
			items = append(items, it)
		}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{IDs: ids, Items: h.itemsDTO(items)})
}

type toggleFavoriteResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	// Unknown ids may still be removed, but never added.
	if _, err := h.catalog.Get(id); errors.Is(err, menu.ErrNotFound) && !h.favorites.IsFavorite(id) {
		h.fail(w, r, err)
		return
	}

	added := h.favorites.Toggle(r.Context(), id)
	writeJSON(w, http.StatusOK, toggleFavoriteResponse{ID: id, Favorite: added})
}

func (h *Handler) clearFavorites(w http.ResponseWriter, r *http.Request) {
	h.favorites.Clear(r.Context())
	writeJSON(w, http.StatusOK, favoritesResponse{IDs: []string{}, Items: []itemJSON{}})
}
