package repository

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/tiffin-storefront/internal/domain/cart"
	"github.com/xenking/tiffin-storefront/internal/domain/favorites"
	"github.com/xenking/tiffin-storefront/internal/domain/kitchen"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
	"github.com/xenking/tiffin-storefront/internal/storage"
)

var (
	_ cart.Repository       = (*CartRepository)(nil)
	_ favorites.Repository  = (*FavoritesRepository)(nil)
	_ menu.Repository       = (*MenuRepository)(nil)
	_ kitchen.Repository    = (*KitchenRepository)(nil)
	_ order.LocalRepository = (*OrderRepository)(nil)
)

// CartRepository stores cart lines under KeyCart.
type CartRepository struct {
	doc document[[]cart.Line]
}

// NewCartRepository returns a CartRepository over s.
func NewCartRepository(s storage.Store) *CartRepository {
	return &CartRepository{doc: document[[]cart.Line]{store: s, key: KeyCart}}
}

// Load returns the stored lines, or none when nothing is stored.
func (r *CartRepository) Load(ctx context.Context) ([]cart.Line, error) {
	return r.doc.loadOrZero(ctx)
}

// Save replaces the stored lines.
func (r *CartRepository) Save(ctx context.Context, lines []cart.Line) error {
	return r.doc.save(ctx, lines)
}

// FavoritesRepository stores favorite ids under KeyFavorites.
type FavoritesRepository struct {
	doc document[[]string]
}

// NewFavoritesRepository returns a FavoritesRepository over s.
func NewFavoritesRepository(s storage.Store) *FavoritesRepository {
	return &FavoritesRepository{doc: document[[]string]{store: s, key: KeyFavorites}}
}

func (r *FavoritesRepository) Load(ctx context.Context) ([]string, error) {
	return r.doc.loadOrZero(ctx)
}

func (r *FavoritesRepository) Save(ctx context.Context, ids []string) error {
	return r.doc.save(ctx, ids)
}

// MenuRepository stores the cached menu under KeyMenu.
type MenuRepository struct {
	doc document[[]menu.Item]
}

// NewMenuRepository returns a MenuRepository over s.
func NewMenuRepository(s storage.Store) *MenuRepository {
	return &MenuRepository{doc: document[[]menu.Item]{store: s, key: KeyMenu}}
}

func (r *MenuRepository) Load(ctx context.Context) ([]menu.Item, error) {
	return r.doc.loadOrZero(ctx)
}

func (r *MenuRepository) Save(ctx context.Context, items []menu.Item) error {
	return r.doc.save(ctx, items)
}

// KitchenRepository stores the kitchen profile under KeyKitchen.
type KitchenRepository struct {
	doc document[kitchen.Profile]
}

// NewKitchenRepository returns a KitchenRepository over s.
func NewKitchenRepository(s storage.Store) *KitchenRepository {
	return &KitchenRepository{doc: document[kitchen.Profile]{store: s, key: KeyKitchen}}
}

// Load returns kitchen.ErrNotFound when no profile is stored.
func (r *KitchenRepository) Load(ctx context.Context) (kitchen.Profile, error) {
	p, err := r.doc.load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return kitchen.Profile{}, kitchen.ErrNotFound
	}
	return p, err
}

func (r *KitchenRepository) Save(ctx context.Context, p kitchen.Profile) error {
	return r.doc.save(ctx, p)
}

// OrderRepository stores the offline order book under KeyOrders.
type OrderRepository struct {
	doc document[[]order.LocalOrder]
}

// NewOrderRepository returns an OrderRepository over s.
func NewOrderRepository(s storage.Store) *OrderRepository {
	return &OrderRepository{doc: document[[]order.LocalOrder]{store: s, key: KeyOrders}}
}

func (r *OrderRepository) Load(ctx context.Context) ([]order.LocalOrder, error) {
	return r.doc.loadOrZero(ctx)
}

func (r *OrderRepository) Save(ctx context.Context, orders []order.LocalOrder) error {
	return r.doc.save(ctx, orders)
}
