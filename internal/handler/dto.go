package handler

import (
	"time"

	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/domain/cart"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
)

// Response bodies carry money as JSON numbers; decimals stay inside the
// domain packages.

type itemJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	IsVeg       bool    `json:"isVeg"`
	IsAvailable bool    `json:"isAvailable"`
	Popular     bool    `json:"popular"`
	Favorite    bool    `json:"favorite"`
}

func (h *Handler) itemDTO(it menu.Item) itemJSON {
	return itemJSON{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price.InexactFloat64(),
		Image:       it.Image,
		Category:    it.Category,
		IsVeg:       it.IsVeg,
		IsAvailable: it.IsAvailable,
		Popular:     it.Popular,
		Favorite:    h.favorites.IsFavorite(it.ID),
	}
}

func (h *Handler) itemsDTO(items []menu.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, h.itemDTO(it))
	}
	return out
}

type cartLineJSON struct {
	Item     itemJSON `json:"item"`
	Quantity int      `json:"quantity"`
	Subtotal float64  `json:"subtotal"`
}

type cartJSON struct {
	Items       []cartLineJSON `json:"items"`
	Count       int            `json:"count"`
	Subtotal    float64        `json:"subtotal"`
	DeliveryFee float64        `json:"deliveryFee"`
	Total       float64        `json:"total"`
}

func (h *Handler) cartDTO() cartJSON {
	lines := h.cart.Lines()
	out := cartJSON{Items: make([]cartLineJSON, 0, len(lines))}
	count := 0
	for _, l := range lines {
		count += l.Quantity
		out.Items = append(out.Items, cartLineJSON{
			Item:     h.itemDTO(l.Item),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal().InexactFloat64(),
		})
	}
	subtotal := cart.Total(lines)
	out.Count = count
	out.Subtotal = subtotal.InexactFloat64()
	if len(lines) > 0 {
		fee := h.checkout.DeliveryFee()
		out.DeliveryFee = fee.InexactFloat64()
		out.Total = subtotal.Add(fee).InexactFloat64()
	}
	return out
}

type orderLineJSON struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

func orderLinesDTO(lines []order.Line) []orderLineJSON {
	out := make([]orderLineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, orderLineJSON{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Category: l.Category,
			Price:    l.Price.InexactFloat64(),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal.InexactFloat64(),
		})
	}
	return out
}

// orderJSON is an order as the confirmation page, the order history and
// the back-office show it.
type orderJSON struct {
	ID            string          `json:"id"`
	MealType      string          `json:"mealType"`
	Quantity      int             `json:"quantity"`
	Subtotal      float64         `json:"subtotal,omitempty"`
	DeliveryFee   float64         `json:"deliveryFee,omitempty"`
	Total         float64         `json:"total"`
	Status        order.Status    `json:"status"`
	StatusText    string          `json:"statusText"`
	PaymentStatus string          `json:"paymentStatus,omitempty"`
	Customer      *order.Customer `json:"customer,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	Address       string          `json:"address,omitempty"`
	Items         []orderLineJSON `json:"items,omitempty"`
	DeliveryDate  string          `json:"deliveryDate,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
}

func localOrderDTO(o order.LocalOrder) orderJSON {
	customer := o.Customer
	return orderJSON{
		ID:          o.ID,
		MealType:    o.MealType,
		Quantity:    o.Quantity,
		Subtotal:    o.Subtotal.InexactFloat64(),
		DeliveryFee: o.DeliveryFee.InexactFloat64(),
		Total:       o.Total.InexactFloat64(),
		Status:      o.Status,
		StatusText:  o.Status.Text(),
		Customer:    &customer,
		Address:     o.Customer.Address,
		Items:       orderLinesDTO(o.Items),
		CreatedAt:   o.Date.Format(time.RFC3339),
	}
}

func localOrdersDTO(orders []order.LocalOrder) []orderJSON {
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, localOrderDTO(o))
	}
	return out
}

func recordDTO(r order.Record) orderJSON {
	return orderJSON{
		ID:            r.ID.String(),
		MealType:      r.MealType,
		Quantity:      r.Quantity,
		Total:         r.TotalAmount.InexactFloat64(),
		Status:        r.OrderStatus,
		StatusText:    r.OrderStatus.Text(),
		PaymentStatus: r.PaymentStatus,
		CustomerName:  r.CustomerName,
		Address:       r.Address,
		DeliveryDate:  r.DeliveryDate,
		CreatedAt:     r.CreatedAt,
	}
}

func recordsDTO(records []order.Record) []orderJSON {
	out := make([]orderJSON, 0, len(records))
	for _, r := range records {
		out = append(out, recordDTO(r))
	}
	return out
}

type sessionJSON struct {
	auth.State
	User     *auth.User `json:"user,omitempty"`
	Redirect string     `json:"redirect,omitempty"`
}
