package order

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/tiffin-storefront/internal/domain/cart"
)

// State is the checkout state machine: Idle, then Submitting, then
// Succeeded or Failed. Both outcomes accept a new submission.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Cart is the part of the cart aggregate checkout needs.
type Cart interface {
	Lines() []cart.Line
	Settle(ctx context.Context, lines []cart.Line)
}

// Result describes a placed order.
type Result struct {
	OrderID      string
	RedirectPath string
	Request      Request
}

// Option configures a Checkout.
type Option func(*Checkout)

// WithDeliveryFee overrides DefaultDeliveryFee.
func WithDeliveryFee(fee decimal.Decimal) Option {
	return func(c *Checkout) { c.fee = fee }
}

// WithProfileUpdater enables syncing the delivery address to the customer
// profile after a successful order.
func WithProfileUpdater(p ProfileUpdater) Option {
	return func(c *Checkout) { c.profile = p }
}

// WithMeterProvider sets the provider for checkout metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Checkout) { c.meterProvider = mp }
}

// Checkout turns the cart and a delivery form into a submitted order.
type Checkout struct {
	cart      Cart
	submitter Submitter
	profile   ProfileUpdater
	fee       decimal.Decimal

	meterProvider metric.MeterProvider
	outcomes      metric.Int64Counter

	inflight atomic.Bool
	state    atomic.Int32
}

// NewCheckout creates a Checkout for c that places orders through s.
func NewCheckout(c Cart, s Submitter, opts ...Option) (*Checkout, error) {
	co := &Checkout{
		cart:          c,
		submitter:     s,
		fee:           DefaultDeliveryFee,
		meterProvider: noop.NewMeterProvider(),
	}
	for _, o := range opts {
		o(co)
	}
	if co.fee.IsNegative() {
		return nil, errors.Errorf("negative delivery fee %s", co.fee)
	}

	meter := co.meterProvider.Meter("github.com/xenking/tiffin-storefront/internal/domain/order")
	outcomes, err := meter.Int64Counter("storefront.checkout.outcomes",
		metric.WithDescription("Checkout submissions by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout counter")
	}
	co.outcomes = outcomes
	return co, nil
}

// DeliveryFee returns the surcharge added to every order.
func (c *Checkout) DeliveryFee() decimal.Decimal { return c.fee }

// State returns the state of the latest submission.
func (c *Checkout) State() State { return State(c.state.Load()) }

// Preview assembles the order the current cart would produce without
// submitting it.
func (c *Checkout) Preview(customer Customer) (Request, error) {
	return Assemble(c.cart.Lines(), customer, c.fee)
}

// Submit validates the form, places the order and takes the ordered lines
// out of the cart. With no concurrent changes that empties it; items added
// while the order was in flight stay for the next checkout.
//
// Validation errors are returned before any call to the submitter. While a
// submission is in flight further calls fail with ErrCheckoutInProgress.
// On failure the cart is left untouched.
func (c *Checkout) Submit(ctx context.Context, customer Customer) (Result, error) {
	if !c.inflight.CompareAndSwap(false, true) {
		return Result{}, ErrCheckoutInProgress
	}
	defer c.inflight.Store(false)

	lg := zctx.From(ctx)

	lines := c.cart.Lines()
	req, err := Assemble(lines, customer, c.fee)
	if err != nil {
		c.state.Store(int32(StateIdle))
		c.record(ctx, "invalid")
		return Result{}, err
	}

	c.state.Store(int32(StateSubmitting))
	placed, err := c.submitter.PlaceOrder(ctx, req)
	if err != nil {
		c.state.Store(int32(StateFailed))
		c.record(ctx, "failed")
		return Result{}, errors.Wrap(err, "place order")
	}

	if c.profile != nil {
		if err := c.profile.UpdateAddress(ctx, req.Customer.Address); err != nil {
			lg.Warn("Failed to update profile address", zap.Error(err))
		}
	}

	c.cart.Settle(ctx, lines)
	c.state.Store(int32(StateSucceeded))
	c.record(ctx, "succeeded")

	lg.Info("Order placed",
		zap.String("order_id", placed.ID),
		zap.String("meal_type", req.MealType),
		zap.Int("quantity", req.Quantity),
		zap.Stringer("total", req.Total),
	)
	return Result{
		OrderID:      placed.ID,
		RedirectPath: ConfirmationPath(placed.ID),
		Request:      req,
	}, nil
}

func (c *Checkout) record(ctx context.Context, outcome string) {
	c.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// ProfilePath lists the customer's orders.
const ProfilePath = "/profile"

// ConfirmationPath is the storefront page that shows order id. Orders the
// kitchen accepted without returning an id are found on the profile page.
func ConfirmationPath(id string) string {
	if id == "" {
		return ProfilePath
	}
	return "/order-confirmation/" + id
}
