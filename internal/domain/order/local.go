package order

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocalOrder is an order recorded by the offline LocalBook. It is never
// updated after it is placed.
type LocalOrder struct {
	ID          string          `json:"id"`
	Items       []Line          `json:"items"`
	Customer    Customer        `json:"customer"`
	MealType    string          `json:"mealType"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
	Status      Status          `json:"status"`
	Date        time.Time       `json:"date"`
}

// LocalRepository persists the local order list.
type LocalRepository interface {
	Load(ctx context.Context) ([]LocalOrder, error)
	Save(ctx context.Context, orders []LocalOrder) error
}

var _ Submitter = (*LocalBook)(nil)

// LocalBook is a Submitter that appends orders to a persisted list instead
// of calling the kitchen API.
type LocalBook struct {
	repo  LocalRepository
	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

// NewLocalBook creates a LocalBook over repo.
func NewLocalBook(repo LocalRepository) *LocalBook {
	return &LocalBook{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// PlaceOrder records req as a pending order.
func (b *LocalBook) PlaceOrder(ctx context.Context, req Request) (Placed, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders, err := b.repo.Load(ctx)
	if err != nil {
		return Placed{}, errors.Wrap(err, "load orders")
	}

	o := LocalOrder{
		ID:          b.newID(),
		Items:       slices.Clone(req.Lines),
		Customer:    req.Customer,
		MealType:    req.MealType,
		Quantity:    req.Quantity,
		Subtotal:    req.Subtotal,
		DeliveryFee: req.DeliveryFee,
		Total:       req.Total,
		Status:      StatusPending,
		Date:        b.now().UTC(),
	}
	if err := b.repo.Save(ctx, append(orders, o)); err != nil {
		return Placed{}, errors.Wrap(err, "save orders")
	}
	return Placed{ID: o.ID, Status: o.Status}, nil
}

// Get returns the order with the given id.
func (b *LocalBook) Get(ctx context.Context, id string) (LocalOrder, error) {
	orders, err := b.List(ctx)
	if err != nil {
		return LocalOrder{}, err
	}
	i := slices.IndexFunc(orders, func(o LocalOrder) bool { return o.ID == id })
	if i < 0 {
		return LocalOrder{}, ErrNotFound
	}
	return orders[i], nil
}

// List returns every recorded order, oldest first.
func (b *LocalBook) List(ctx context.Context) ([]LocalOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders, err := b.repo.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load orders")
	}
	return orders, nil
}
