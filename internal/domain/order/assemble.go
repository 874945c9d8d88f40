package order

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/tiffin-storefront/internal/domain/cart"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
)

var mealTypes = []string{MealBreakfast, MealLunch, MealDinner}

// Validate checks the required delivery fields. Whitespace-only values count
// as missing.
func (c Customer) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Assemble builds an order Request from cart lines and the delivery form.
// It performs no I/O.
func Assemble(lines []cart.Line, customer Customer, deliveryFee decimal.Decimal) (Request, error) {
	if err := customer.Validate(); err != nil {
		return Request{}, err
	}
	if len(lines) == 0 {
		return Request{}, ErrEmptyCart
	}

	quantity := 0
	detail := make([]Line, 0, len(lines))
	for _, l := range lines {
		quantity += l.Quantity
		detail = append(detail, Line{
			ItemID:   l.ID,
			Name:     l.Name,
			Category: l.Category,
			Price:    l.Price,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		})
	}

	subtotal := cart.Total(lines)
	return Request{
		MealType:    MealTypeOf(lines[0].Category),
		Quantity:    quantity,
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Total:       subtotal.Add(deliveryFee),
		Customer: Customer{
			Name:         strings.TrimSpace(customer.Name),
			Phone:        strings.TrimSpace(customer.Phone),
			Address:      strings.TrimSpace(customer.Address),
			Instructions: strings.TrimSpace(customer.Instructions),
		},
		Lines: detail,
	}, nil
}

// MealTypeOf maps a menu category to an order meal type.
func MealTypeOf(category string) string {
	mt := menu.MealType(category)
	if slices.Contains(mealTypes, mt) {
		return mt
	}
	return DefaultMealType
}
