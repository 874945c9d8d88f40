// Package menu holds the storefront's menu catalog: the normalized item
// shape, the mapping from raw kitchen API records, and an in-memory catalog
// that is kept in sync with the persisted menu cache.
package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Item is a dish as the storefront shows it. JSON names match the persisted
// menu cache so existing snapshots keep loading.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	IsVeg       bool            `json:"isVeg"`
	IsAvailable bool            `json:"isAvailable"`
	Popular     bool            `json:"popular"`
}

// Repository persists the cached menu.
type Repository interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// Source fetches the current menu from the kitchen.
type Source interface {
	Meals(ctx context.Context) ([]Item, error)
}
