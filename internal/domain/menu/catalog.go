package menu

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Catalog is the in-memory menu. Every change is written through to the
// Repository; the Repository copy is only read back by Load.
//
// With a Source the catalog is online: Refresh replaces the menu with what
// the kitchen returns. Without one it is offline and Load falls back to the
// built-in seed when nothing is cached.
type Catalog struct {
	repo   Repository
	source Source

	mu    sync.RWMutex
	items []Item

	// generation identifies the most recently started refresh. A fetch that
	// completes after a newer one started is discarded.
	generation atomic.Uint64
	hydrate    singleflight.Group
}

// NewCatalog creates an empty Catalog. source may be nil for offline use.
func NewCatalog(repo Repository, source Source) *Catalog {
	return &Catalog{repo: repo, source: source}
}

// Online reports whether the catalog fetches from a remote Source.
func (c *Catalog) Online() bool { return c.source != nil }

// Load reads the cached menu. An offline catalog with an empty cache is
// seeded with DefaultItems, and the seed is persisted.
func (c *Catalog) Load(ctx context.Context) error {
	items, err := c.repo.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load menu")
	}
	if len(items) == 0 && !c.Online() {
		items = DefaultItems()
		if err := c.repo.Save(ctx, items); err != nil {
			return errors.Wrap(err, "save default menu")
		}
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Hydrate fills an empty catalog. Concurrent callers share one fetch. It
// never fails: a fetch error leaves the catalog empty so views can render an
// empty state.
func (c *Catalog) Hydrate(ctx context.Context) []Item {
	if items := c.Items(); len(items) > 0 {
		return items
	}
	v, _, _ := c.hydrate.Do("hydrate", func() (any, error) {
		if items := c.Items(); len(items) > 0 {
			return items, nil
		}
		return c.Refresh(ctx), nil
	})
	return v.([]Item)
}

// Refresh replaces the catalog with the Source's current menu, or with the
// persisted cache when offline. Fetch errors are logged and produce an empty
// catalog.
func (c *Catalog) Refresh(ctx context.Context) []Item {
	lg := zctx.From(ctx)
	if !c.Online() {
		if err := c.Load(ctx); err != nil {
			lg.Error("Failed to reload menu", zap.Error(err))
		}
		return c.Items()
	}

	gen := c.generation.Add(1)
	items, err := c.source.Meals(ctx)
	if err != nil {
		lg.Error("Failed to fetch menu", zap.Error(err))
		items = []Item{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.generation.Load(); gen != latest {
		lg.Debug("Discarding stale menu response",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", latest),
		)
		return slices.Clone(c.items)
	}
	c.items = items
	c.persistLocked(ctx)
	return slices.Clone(items)
}

// Items returns a copy of the whole catalog, including unavailable items.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, it := range c.items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// Filter returns the available items matching f.
func (c *Catalog) Filter(f Filter) []Item {
	return f.Apply(c.Items())
}

// Categories returns CategoryAll followed by each distinct category in the
// order it first appears.
func (c *Catalog) Categories() []string {
	return Categories(c.Items())
}

// CategoryCount returns how many available items the filter category selects.
func (c *Catalog) CategoryCount(category string) int {
	return len(Filter{Category: category}.Apply(c.Items()))
}

// Set replaces the whole catalog.
func (c *Catalog) Set(ctx context.Context, items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = slices.Clone(items)
	c.persistLocked(ctx)
}

// Add appends an item.
func (c *Catalog) Add(ctx context.Context, item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, item)
	c.persistLocked(ctx)
}

// Update replaces the item with the same id.
func (c *Catalog) Update(ctx context.Context, item Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.items, func(it Item) bool { return it.ID == item.ID })
	if i < 0 {
		return ErrNotFound
	}
	c.items[i] = item
	c.persistLocked(ctx)
	return nil
}

// Delete removes the item with the given id. Missing ids are ignored.
func (c *Catalog) Delete(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = slices.DeleteFunc(c.items, func(it Item) bool { return it.ID == id })
	c.persistLocked(ctx)
}

// persistLocked mirrors the catalog to the repository. The cache is not
// authoritative, so a failed write is logged rather than returned.
func (c *Catalog) persistLocked(ctx context.Context) {
	if err := c.repo.Save(ctx, c.items); err != nil {
		zctx.From(ctx).Warn("Failed to persist menu", zap.Error(err))
	}
}
