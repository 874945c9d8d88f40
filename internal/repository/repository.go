// Package repository implements the domain repositories on top of a
// storage.Store. Each aggregate is kept as one JSON document under a fixed
// key.
package repository

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/xenking/tiffin-storefront/internal/storage"
)

// Keys of the persisted documents. The names are shared with the browser
// storefront so snapshots can be moved between the two.
const (
	KeyCart      = "redux_cart"
	KeyFavorites = "redux_favorites"
	KeyMenu      = "kitchen_menu"
	KeyKitchen   = "kitchen_info"
	KeyOrders    = "orders"
	KeyToken     = "auth_token"
	KeyUser      = "user"
)

// ErrCorrupt is returned when a stored document is not valid JSON for its
// type.
var ErrCorrupt = errors.New("corrupt document")

// document is a JSON value of type T stored under key.
type document[T any] struct {
	store storage.Store
	key   string
}

// load returns storage.ErrNotFound when the key is absent.
func (d document[T]) load(ctx context.Context) (T, error) {
	var v T
	data, err := d.store.Get(ctx, d.key)
	if err != nil {
		return v, errors.Wrapf(err, "get %q", d.key)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Wrapf(ErrCorrupt, "decode %q: %v", d.key, err)
	}
	return v, nil
}

// loadOrZero is load with a missing key mapped to the zero value.
func (d document[T]) loadOrZero(ctx context.Context) (T, error) {
	v, err := d.load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		var zero T
		return zero, nil
	}
	return v, err
}

func (d document[T]) save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %q", d.key)
	}
	if err := d.store.Set(ctx, d.key, data); err != nil {
		return errors.Wrapf(err, "set %q", d.key)
	}
	return nil
}

func (d document[T]) delete(ctx context.Context) error {
	if err := d.store.Delete(ctx, d.key); err != nil {
		return errors.Wrapf(err, "delete %q", d.key)
	}
	return nil
}
