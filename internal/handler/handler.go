// Package handler is the storefront's JSON API: the boundary between the
// view layer and the cart, favorites, menu, session and checkout state the
// server keeps on the customer's behalf.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xenking/tiffin-storefront/internal/apiclient"
	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/domain/cart"
	"github.com/xenking/tiffin-storefront/internal/domain/favorites"
	"github.com/xenking/tiffin-storefront/internal/domain/kitchen"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
	"github.com/xenking/tiffin-storefront/pkg/httpmiddleware"
)

// Account is the part of the kitchen API used by signed-in customers.
type Account interface {
	auth.Authenticator
	Register(ctx context.Context, r apiclient.Registration) (apiclient.Registered, error)
	Profile(ctx context.Context) (auth.User, error)
	UpdateProfile(ctx context.Context, p apiclient.ProfileUpdate) error
	MyOrders(ctx context.Context) ([]order.Record, error)
}

// Admin is the back-office part of the kitchen API.
type Admin interface {
	DashboardStats(ctx context.Context) (json.RawMessage, error)
	Users(ctx context.Context) ([]auth.User, error)
	ToggleUser(ctx context.Context, id string) error
	AdminMeals(ctx context.Context) ([]menu.Item, error)
	CreateMeal(ctx context.Context, f apiclient.MealForm) (menu.Item, error)
	UpdateMeal(ctx context.Context, id string, f apiclient.MealForm) (menu.Item, error)
	DeleteMeal(ctx context.Context, id string) error
	ToggleMeal(ctx context.Context, id string) error
	Orders(ctx context.Context) ([]order.Record, error)
	UpdateOrder(ctx context.Context, id string, u apiclient.OrderUpdate) error
}

// OrderBook lists orders recorded without the kitchen API.
type OrderBook interface {
	Get(ctx context.Context, id string) (order.LocalOrder, error)
	List(ctx context.Context) ([]order.LocalOrder, error)
}

var (
	_ Account   = (*apiclient.Client)(nil)
	_ Admin     = (*apiclient.Client)(nil)
	_ OrderBook = (*order.LocalBook)(nil)
)

// Deps are the handler's collaborators. Account and Admin are nil when the
// storefront runs offline; Book is nil when it runs online.
type Deps struct {
	Catalog   *menu.Catalog
	Cart      *cart.Cart
	Favorites *favorites.Set
	Kitchen   *kitchen.Service
	Session   *auth.Session
	Checkout  *order.Checkout
	Book      OrderBook
	Account   Account
	Admin     Admin
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// LoginLimit throttles login attempts. Nil disables throttling.
	LoginLimit httpmiddleware.Middleware
}

// Handler serves the storefront API.
type Handler struct {
	catalog   *menu.Catalog
	cart      *cart.Cart
	favorites *favorites.Set
	kitchen   *kitchen.Service
	session   *auth.Session
	checkout  *order.Checkout
	book      OrderBook
	account   Account
	admin     Admin

	loginLimit httpmiddleware.Middleware
}

// New creates a Handler.
func New(cfg Config, d Deps) *Handler {
	limit := cfg.LoginLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		catalog:    d.Catalog,
		cart:       d.Cart,
		favorites:  d.Favorites,
		kitchen:    d.Kitchen,
		session:    d.Session,
		checkout:   d.Checkout,
		book:       d.Book,
		account:    d.Account,
		admin:      d.Admin,
		loginLimit: limit,
	}
}

// Online reports whether the handler talks to the kitchen API.
func (h *Handler) Online() bool { return h.account != nil }

// Register mounts the API routes on r under /api.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/menu", h.listMenu).Methods(http.MethodGet)
	api.HandleFunc("/menu/categories", h.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/menu/refresh", h.refreshMenu).Methods(http.MethodPost)
	api.HandleFunc("/menu/{id}", h.getMenuItem).Methods(http.MethodGet)

	api.HandleFunc("/cart", h.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.clearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", h.addCartItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", h.updateCartItem).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{id}", h.removeCartItem).Methods(http.MethodDelete)

	api.HandleFunc("/favorites", h.listFavorites).Methods(http.MethodGet)
	api.HandleFunc("/favorites", h.clearFavorites).Methods(http.MethodDelete)
	api.HandleFunc("/favorites/{id}/toggle", h.toggleFavorite).Methods(http.MethodPost)

	api.HandleFunc("/checkout", h.submitCheckout).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)

	api.Handle("/auth/login", h.loginLimit(http.HandlerFunc(h.login))).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/status", h.status).Methods(http.MethodGet)

	api.HandleFunc("/profile", h.getProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPut)
	api.HandleFunc("/profile/orders", h.profileOrders).Methods(http.MethodGet)

	api.HandleFunc("/kitchen", h.getKitchen).Methods(http.MethodGet)
	api.Handle("/kitchen", h.requireAdmin(http.HandlerFunc(h.updateKitchen))).Methods(http.MethodPut)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(mux.MiddlewareFunc(h.requireAdmin))
	admin.HandleFunc("/dashboard", h.dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/users", h.adminUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/toggle", h.adminToggleUser).Methods(http.MethodPut)
	admin.HandleFunc("/meals", h.adminMeals).Methods(http.MethodGet)
	admin.HandleFunc("/meals", h.adminCreateMeal).Methods(http.MethodPost)
	admin.HandleFunc("/meals/{id}", h.adminUpdateMeal).Methods(http.MethodPut)
	admin.HandleFunc("/meals/{id}", h.adminDeleteMeal).Methods(http.MethodDelete)
	admin.HandleFunc("/meals/{id}/toggle", h.adminToggleMeal).Methods(http.MethodPut)
	admin.HandleFunc("/orders", h.adminOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", h.adminUpdateOrder).Methods(http.MethodPut)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
}

// requireAdmin sends visitors without the admin role back to the storefront
// home page. Offline there is no account system and the back-office is open.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Online() && !h.session.IsAdmin(r.Context()) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
