package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xenking/tiffin-storefront/internal/domain/menu"
)

type menuResponse struct {
	Items      []itemJSON `json:"items"`
	Categories []string   `json:"categories"`
}

// listMenu returns available items, optionally narrowed by ?category= and
// ?q=. The first request after start fetches the menu when online.
func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	h.catalog.Hydrate(r.Context())

	q := r.URL.Query()
	items := h.catalog.Filter(menu.Filter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
	})
	writeJSON(w, http.StatusOK, menuResponse{
		Items:      h.itemsDTO(items),
		Categories: h.catalog.Categories(),
	})
}

type categoryJSON struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	h.catalog.Hydrate(r.Context())

	names := h.catalog.Categories()
	out := make([]categoryJSON, 0, len(names))
	for _, name := range names {
		out = append(out, categoryJSON{Name: name, Count: h.catalog.CategoryCount(name)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	h.catalog.Hydrate(r.Context())

	it, err := h.catalog.Get(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.itemDTO(it))
}

func (h *Handler) refreshMenu(w http.ResponseWriter, r *http.Request) {
	items := h.catalog.Refresh(r.Context())
	writeJSON(w, http.StatusOK, menuResponse{
		Items:      h.itemsDTO(items),
		Categories: menu.Categories(items),
	})
}
