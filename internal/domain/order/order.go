// Package order assembles checkouts from the cart and submits them, either
// to the kitchen API or to a local order book when running offline.
package order

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/tiffin-storefront/internal/jsonx"
)

// Sentinel errors for checkout.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNotFound           = errors.New("order not found")
)

// ValidationError reports a checkout form with missing required fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Please fill in all required fields (Name, Phone, Address)"
}

// Status is an order's lifecycle state.
type Status string

// Statuses reported by the kitchen API, plus StatusPending for orders kept
// in the local book.
const (
	StatusPending        Status = "pending"
	StatusPlaced         Status = "placed"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Text renders the status for display: "out_for_delivery" becomes
// "Out For Delivery" and an empty status "Unknown".
func (s Status) Text() string {
	if s == "" {
		return "Unknown"
	}
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Meal types accepted by the kitchen API. Carts whose first line falls
// outside this list are ordered as DefaultMealType.
const (
	MealBreakfast   = "breakfast"
	MealLunch       = "lunch"
	MealDinner      = "dinner"
	DefaultMealType = MealLunch
)

// DefaultDeliveryFee is added to every order total.
var DefaultDeliveryFee = decimal.NewFromInt(30)

// Customer is the delivery form filled in at checkout.
type Customer struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Instructions string `json:"instructions,omitempty"`
}

// Line is the per-item detail of an order.
type Line struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// UnmarshalJSON also reads order lines saved by the browser storefront,
// which stored whole cart items: the id under "id" and no subtotal.
func (l *Line) UnmarshalJSON(data []byte) error {
	type line Line
	var v struct {
		line
		ID jsonx.ID `json:"id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = Line(v.line)
	if l.ItemID == "" {
		l.ItemID = v.ID.String()
	}
	if l.Subtotal.IsZero() {
		l.Subtotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	}
	return nil
}

// Request is an assembled order ready to submit.
//
// MealType and Quantity collapse the cart into the single meal type and
// scalar quantity the kitchen API records; Lines keeps the full detail.
type Request struct {
	MealType    string
	Quantity    int
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	Customer    Customer
	Lines       []Line
}

// Placed is the acknowledgement of a submitted order.
type Placed struct {
	ID     string
	Status Status
}

// Submitter places an assembled order.
type Submitter interface {
	PlaceOrder(ctx context.Context, req Request) (Placed, error)
}

// ProfileUpdater stores the delivery address on the customer's profile.
type ProfileUpdater interface {
	UpdateAddress(ctx context.Context, address string) error
}

// Record is an order as the kitchen API lists it in order histories.
type Record struct {
	ID            jsonx.ID        `json:"id"`
	UserID        jsonx.ID        `json:"user_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	MealType      string          `json:"meal_type"`
	Quantity      int             `json:"quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   Status          `json:"order_status"`
	Address       string          `json:"address,omitempty"`
	DeliveryDate  string          `json:"delivery_date,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
}
