package handler

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/xenking/tiffin-storefront/internal/domain/order"
)

type checkoutResponse struct {
	OrderID     string          `json:"orderId"`
	Redirect    string          `json:"redirect"`
	MealType    string          `json:"mealType"`
	Quantity    int             `json:"quantity"`
	Subtotal    float64         `json:"subtotal"`
	DeliveryFee float64         `json:"deliveryFee"`
	Total       float64         `json:"total"`
	Items       []orderLineJSON `json:"items"`
}

// submitCheckout places an order for the current cart. The body is the
// delivery form.
func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var customer order.Customer
	if err := decodeJSON(r, &customer); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.checkout.Submit(r.Context(), customer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req := res.Request
	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:     res.OrderID,
		Redirect:    res.RedirectPath,
		MealType:    req.MealType,
		Quantity:    req.Quantity,
		Subtotal:    req.Subtotal.InexactFloat64(),
		DeliveryFee: req.DeliveryFee.InexactFloat64(),
		Total:       req.Total.InexactFloat64(),
		Items:       orderLinesDTO(req.Lines),
	})
}

// getOrder backs the confirmation page. Offline orders come from the local
// book; online ones from the customer's order history.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if h.book != nil {
		o, err := h.book.Get(ctx, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, localOrderDTO(o))
		return
	}
	if h.account == nil {
		h.fail(w, r, order.ErrNotFound)
		return
	}

	records, err := h.account.MyOrders(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	i := slices.IndexFunc(records, func(rec order.Record) bool { return rec.ID.String() == id })
	if i < 0 {
		h.fail(w, r, order.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, recordDTO(records[i]))
}
