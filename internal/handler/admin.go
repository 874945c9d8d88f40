package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/tiffin-storefront/internal/apiclient"
	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
)

// maxUpload caps multipart meal forms, image included.
const maxUpload = 10 << 20

type dashboardResponse struct {
	Stats  json.RawMessage `json:"stats"`
	Users  []auth.User     `json:"users"`
	Orders []orderJSON     `json:"orders"`
	Meals  []itemJSON      `json:"meals"`
}

// localStats is what the dashboard shows when there is no kitchen API to
// ask.
type localStats struct {
	TotalOrders    int     `json:"totalOrders"`
	PendingOrders  int     `json:"pendingOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalMeals     int     `json:"totalMeals"`
	AvailableMeals int     `json:"availableMeals"`
}

// dashboard loads stats, users, orders and meals in parallel. Any failure
// fails the whole page.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.Online() {
		h.localDashboard(w, r)
		return
	}

	var (
		resp    dashboardResponse
		records []order.Record
		meals   []menu.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.Stats, err = h.admin.DashboardStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Users, err = h.admin.Users(gctx)
		return err
	})
	g.Go(func() (err error) {
		records, err = h.admin.Orders(gctx)
		return err
	})
	g.Go(func() (err error) {
		meals, err = h.admin.AdminMeals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, r, err)
		return
	}

	resp.Orders = recordsDTO(records)
	resp.Meals = h.itemsDTO(meals)
	if resp.Users == nil {
		resp.Users = []auth.User{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) localDashboard(w http.ResponseWriter, r *http.Request) {
	orders, err := h.book.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items := h.catalog.Items()

	var stats localStats
	revenue := decimal.Zero
	for _, o := range orders {
		stats.TotalOrders++
		if o.Status == order.StatusPending {
			stats.PendingOrders++
		}
		revenue = revenue.Add(o.Total)
	}
	stats.TotalRevenue = revenue.InexactFloat64()
	for _, it := range items {
		stats.TotalMeals++
		if it.IsAvailable {
			stats.AvailableMeals++
		}
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "encode stats"))
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Stats:  raw,
		Users:  []auth.User{},
		Orders: localOrdersDTO(orders),
		Meals:  h.itemsDTO(items),
	})
}

func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		h.fail(w, r, errOffline)
		return
	}
	users, err := h.admin.Users(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if users == nil {
		users = []auth.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) adminToggleUser(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		h.fail(w, r, errOffline)
		return
	}
	if err := h.admin.ToggleUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminMeals(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		writeJSON(w, http.StatusOK, h.itemsDTO(h.catalog.Items()))
		return
	}
	meals, err := h.admin.AdminMeals(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.itemsDTO(meals))
}

// mealInput is the admin meal editor as submitted, either as a multipart
// form (with an optional image file), a urlencoded form or JSON.
type mealInput struct {
	Name        string
	MealType    string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	HasPrice    bool
	IsVeg       *bool
	Popular     *bool
	Image       *apiclient.Upload
}

type mealJSON struct {
	Name        string           `json:"name"`
	MealType    string           `json:"meal_type"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Price       *decimal.Decimal `json:"price"`
	IsVeg       *bool            `json:"isVeg"`
	Popular     *bool            `json:"popular"`
}

// parseMeal reads a meal editor submission. The returned cleanup releases
// temporary upload files.
func parseMeal(r *http.Request) (mealInput, func(), error) {
	noop := func() {}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "application/json" {
		var in mealJSON
		if err := decodeJSON(r, &in); err != nil {
			return mealInput{}, noop, err
		}
		m := mealInput{
			Name:        strings.TrimSpace(in.Name),
			MealType:    strings.TrimSpace(in.MealType),
			Description: in.Description,
			ImageURL:    strings.TrimSpace(in.Image),
			IsVeg:       in.IsVeg,
			Popular:     in.Popular,
		}
		if m.MealType == "" {
			m.MealType = menu.MealType(in.Category)
		}
		if in.Price != nil {
			m.Price, m.HasPrice = *in.Price, true
		}
		return m, noop, nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return mealInput{}, noop, invalid("malformed form")
		}
	} else if err := r.ParseForm(); err != nil {
		return mealInput{}, noop, invalid("malformed form")
	}

	m := mealInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		MealType:    strings.TrimSpace(r.FormValue("meal_type")),
		Description: r.FormValue("description"),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
	}
	if v := strings.TrimSpace(r.FormValue("price")); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return mealInput{}, noop, invalid("price must be a number")
		}
		m.Price, m.HasPrice = p, true
	}
	for field, dst := range map[string]**bool{"is_veg": &m.IsVeg, "popular": &m.Popular} {
		if v := r.FormValue(field); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return mealInput{}, noop, invalid(field + " must be true or false")
			}
			*dst = &b
		}
	}

	cleanup := noop
	if r.MultipartForm != nil {
		cleanup = func() { _ = r.MultipartForm.RemoveAll() }
		if f, hdr, err := r.FormFile("image"); err == nil {
			m.Image = &apiclient.Upload{Filename: hdr.Filename, Content: f}
			inner := cleanup
			cleanup = func() {
				_ = f.Close()
				inner()
			}
		}
	}
	return m, cleanup, nil
}

// form converts the input into the kitchen API's meal form.
func (m mealInput) form() (apiclient.MealForm, error) {
	f := apiclient.MealForm{
		Name:        m.Name,
		MealType:    m.MealType,
		Price:       m.Price,
		Description: m.Description,
		Image:       m.Image,
	}
	if !m.HasPrice {
		return f, invalid("price is required")
	}
	if err := f.Validate(); err != nil {
		return f, invalid(err.Error())
	}
	return f, nil
}

// apply overlays the submitted fields on it. Blank fields keep the current
// value.
func (m mealInput) apply(it menu.Item) (menu.Item, error) {
	if m.Name != "" {
		it.Name = m.Name
	}
	if m.MealType != "" {
		it.Category = menu.Category(m.MealType)
	}
	if m.Description != "" {
		it.Description = m.Description
	}
	if m.ImageURL != "" {
		it.Image = m.ImageURL
	}
	if m.HasPrice {
		if m.Price.IsNegative() {
			return it, invalid("price must not be negative")
		}
		it.Price = m.Price
	}
	if m.IsVeg != nil {
		it.IsVeg = *m.IsVeg
	}
	if m.Popular != nil {
		it.Popular = *m.Popular
	}
	return it, nil
}

func (h *Handler) adminCreateMeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, cleanup, err := parseMeal(r)
	defer cleanup()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if !h.Online() {
		if in.Name == "" || !in.HasPrice {
			h.fail(w, r, invalid("name and price are required"))
			return
		}
		it, err := in.apply(menu.Item{
			ID:          uuid.NewString(),
			Image:       menu.PlaceholderImage,
			Category:    menu.DefaultCategory,
			IsVeg:       true,
			IsAvailable: true,
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.catalog.Add(ctx, it)
		writeJSON(w, http.StatusCreated, h.itemDTO(it))
		return
	}

	f, err := in.form()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.admin.CreateMeal(ctx, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.catalog.Refresh(ctx)
	writeJSON(w, http.StatusCreated, h.itemDTO(it))
}

func (h *Handler) adminUpdateMeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	in, cleanup, err := parseMeal(r)
	defer cleanup()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if !h.Online() {
		cur, err := h.catalog.Get(id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		it, err := in.apply(cur)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.catalog.Update(ctx, it); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.itemDTO(it))
		return
	}

	f, err := in.form()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.admin.UpdateMeal(ctx, id, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.catalog.Refresh(ctx)
	writeJSON(w, http.StatusOK, h.itemDTO(it))
}

func (h *Handler) adminDeleteMeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if !h.Online() {
		if _, err := h.catalog.Get(id); err != nil {
			h.fail(w, r, err)
			return
		}
		h.catalog.Delete(ctx, id)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.admin.DeleteMeal(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.catalog.Refresh(ctx)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminToggleMeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if !h.Online() {
		it, err := h.catalog.Get(id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		it.IsAvailable = !it.IsAvailable
		if err := h.catalog.Update(ctx, it); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.itemDTO(it))
		return
	}

	if err := h.admin.ToggleMeal(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.catalog.Refresh(ctx)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
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

	records, err := h.admin.Orders(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsDTO(records))
}

var knownStatuses = map[order.Status]struct{}{
	order.StatusPlaced:         {},
	order.StatusConfirmed:      {},
	order.StatusPreparing:      {},
	order.StatusOutForDelivery: {},
	order.StatusDelivered:      {},
	order.StatusCancelled:      {},
}

func (h *Handler) adminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.Online() {
		h.fail(w, r, errOffline)
		return
	}
	var req apiclient.OrderUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req == (apiclient.OrderUpdate{}) {
		h.fail(w, r, invalid("order_status or payment_status is required"))
		return
	}
	if _, ok := knownStatuses[req.OrderStatus]; req.OrderStatus != "" && !ok {
		h.fail(w, r, invalid("unknown order status "+string(req.OrderStatus)))
		return
	}

	if err := h.admin.UpdateOrder(r.Context(), mux.Vars(r)["id"], req); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
