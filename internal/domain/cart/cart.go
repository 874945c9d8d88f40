// Package cart implements the shopping cart aggregate.
//
// The cart is a write-through cache over its Repository: every mutation
// updates the in-memory lines and then saves the full snapshot before
// returning.
package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/tiffin-storefront/internal/domain/menu"
)

// Line is one menu item in the cart. The item is a snapshot taken when it
// was first added, so later catalog price changes do not affect it.
type Line struct {
	menu.Item
	Quantity int `json:"quantity"`
}

// Subtotal is the line's snapshot price times its quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Repository persists the cart lines.
type Repository interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
}

// Cart holds at most one line per item id, in insertion order.
type Cart struct {
	repo Repository

	mu    sync.Mutex
	lines []Line
}

// New creates a Cart hydrated from repo. A snapshot that cannot be read is
// logged and the cart starts empty.
func New(ctx context.Context, repo Repository) *Cart {
	lines, err := repo.Load(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Failed to load cart, starting empty", zap.Error(err))
		lines = nil
	}
	return &Cart{repo: repo, lines: normalize(lines)}
}

// normalize drops what a stored snapshot might carry that the cart would
// never have produced itself: non-positive quantities and repeated ids.
// Repeated lines are merged into the first one, keeping its snapshot.
func normalize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := slices.IndexFunc(out, func(o Line) bool { return o.ID == l.ID }); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}

// Add puts quantity units of item in the cart. An existing line for the same
// id is incremented rather than duplicated. A non-positive quantity counts
// as one.
func (c *Cart) Add(ctx context.Context, item menu.Item, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(item.ID); i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, Line{Item: item, Quantity: quantity})
	}
	c.saveLocked(ctx)
}

// UpdateQuantity sets the quantity of the line with the given id. Zero or
// less removes the line. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(id)
	} else if i := c.indexLocked(id); i >= 0 {
		c.lines[i].Quantity = quantity
	}
	c.saveLocked(ctx)
}

// Remove deletes the line with the given id if present.
func (c *Cart) Remove(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(id)
	c.saveLocked(ctx)
}

// Clear empties the cart. An empty snapshot is saved; the key is kept.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = []Line{}
	c.saveLocked(ctx)
}

// Settle removes the quantities of lines, a snapshot taken earlier, from
// the cart. Units added since the snapshot stay, so an order placed from it
// never takes items it did not include.
func (c *Cart) Settle(ctx context.Context, lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lines {
		i := c.indexLocked(l.ID)
		if i < 0 {
			continue
		}
		c.lines[i].Quantity -= l.Quantity
		if c.lines[i].Quantity <= 0 {
			c.removeLocked(l.ID)
		}
	}
	c.saveLocked(ctx)
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines)
}

// Count is the number of units in the cart, not the number of lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total sums the snapshot price of every line times its quantity.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Total sums the subtotals of lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) indexLocked(id string) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ID == id })
}

func (c *Cart) removeLocked(id string) {
	c.lines = slices.DeleteFunc(c.lines, func(l Line) bool { return l.ID == id })
}

// saveLocked writes the snapshot through. The in-memory cart stays
// authoritative for this process when the write fails.
func (c *Cart) saveLocked(ctx context.Context) {
	snapshot := slices.Clone(c.lines)
	if snapshot == nil {
		snapshot = []Line{}
	}
	if err := c.repo.Save(ctx, snapshot); err != nil {
		zctx.From(ctx).Warn("Failed to persist cart", zap.Error(err))
	}
}
