package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
)

// DashboardStats returns the admin dashboard counters exactly as the API
// reports them.
func (c *Client) DashboardStats(ctx context.Context) (json.RawMessage, error) {
	body, err := c.do(ctx, call{
		op:       "admin stats",
		method:   http.MethodGet,
		path:     "/admin/dashboard/stats",
		bearer:   true,
		fallback: "Failed to fetch stats",
	})
	if err != nil {
		return nil, err
	}

	raw, err := dataField(body)
	if err != nil {
		return nil, errors.Wrap(err, "admin stats")
	}
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(raw), nil
}

// Users lists every account.
func (c *Client) Users(ctx context.Context) ([]auth.User, error) {
	body, err := c.do(ctx, call{
		op:       "admin users",
		method:   http.MethodGet,
		path:     "/admin/user",
		bearer:   true,
		fallback: "Failed to fetch users",
	})
	if err != nil {
		return nil, err
	}

	users := []auth.User{}
	if err := decodeData("admin users", body, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ToggleUser activates or deactivates an account.
func (c *Client) ToggleUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{
		op:       "admin toggle user",
		method:   http.MethodPut,
		path:     "/admin/user/" + url.PathEscape(id) + "/toggle",
		bearer:   true,
		fallback: "Failed to update user",
	})
	return err
}

// AdminMeals lists every meal, including unavailable ones.
func (c *Client) AdminMeals(ctx context.Context) ([]menu.Item, error) {
	return c.meals(ctx, call{
		op:       "admin meals",
		method:   http.MethodGet,
		path:     "/admin/meal",
		bearer:   true,
		fallback: "Failed to fetch meals",
	})
}

// Upload is an image file attached to a meal form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// MealForm is the admin meal editor.
type MealForm struct {
	Name        string
	MealType    string
	Price       decimal.Decimal
	Description string
	Image       *Upload
}

// Validate checks the fields the API requires.
func (f MealForm) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return errors.New("meal name is required")
	case strings.TrimSpace(f.MealType) == "":
		return errors.New("meal type is required")
	case f.Price.IsNegative():
		return errors.New("price must not be negative")
	}
	return nil
}

type multipartBody struct {
	reader      io.Reader
	contentType string
}

func (f MealForm) encode() (*multipartBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", f.Name},
		{"meal_type", f.MealType},
		{"price", f.Price.String()},
	}
	if f.Description != "" {
		fields = append(fields, [2]string{"description", f.Description})
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, errors.Wrapf(err, "write field %s", kv[0])
		}
	}

	if f.Image != nil {
		part, err := w.CreateFormFile("image", f.Image.Filename)
		if err != nil {
			return nil, errors.Wrap(err, "create image part")
		}
		if _, err := io.Copy(part, f.Image.Content); err != nil {
			return nil, errors.Wrap(err, "copy image")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart")
	}
	return &multipartBody{reader: &buf, contentType: w.FormDataContentType()}, nil
}

// CreateMeal adds a meal.
func (c *Client) CreateMeal(ctx context.Context, f MealForm) (menu.Item, error) {
	return c.sendMeal(ctx, "admin create meal", http.MethodPost, "/admin/meal", "Failed to create meal", f)
}

// UpdateMeal replaces a meal's fields, and its image when one is attached.
func (c *Client) UpdateMeal(ctx context.Context, id string, f MealForm) (menu.Item, error) {
	return c.sendMeal(ctx, "admin update meal", http.MethodPut, "/admin/meal/"+url.PathEscape(id), "Failed to update meal", f)
}

func (c *Client) sendMeal(ctx context.Context, op, method, path, fallback string, f MealForm) (menu.Item, error) {
	if err := f.Validate(); err != nil {
		return menu.Item{}, err
	}
	mb, err := f.encode()
	if err != nil {
		return menu.Item{}, errors.Wrap(err, op)
	}

	body, err := c.do(ctx, call{
		op:       op,
		method:   method,
		path:     path,
		bearer:   true,
		fallback: fallback,
		body:     mb,
	})
	if err != nil {
		return menu.Item{}, err
	}

	raw, err := dataField(body)
	if err != nil {
		return menu.Item{}, errors.Wrap(err, op)
	}
	if len(raw) == 0 || raw.Type() != jx.Object {
		// Acknowledged without echoing the meal back.
		return menu.Item{}, nil
	}
	m, err := menu.DecodeRawMeal(jx.DecodeBytes(raw))
	if err != nil {
		return menu.Item{}, errors.Wrap(err, op)
	}
	return menu.Normalize(m), nil
}

// DeleteMeal removes a meal.
func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{
		op:       "admin delete meal",
		method:   http.MethodDelete,
		path:     "/admin/meal/" + url.PathEscape(id),
		bearer:   true,
		fallback: "Failed to delete meal",
	})
	return err
}

// ToggleMeal flips a meal's availability.
func (c *Client) ToggleMeal(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{
		op:       "admin toggle meal",
		method:   http.MethodPut,
		path:     "/admin/meal/" + url.PathEscape(id) + "/toggle",
		bearer:   true,
		fallback: "Failed to update meal",
	})
	return err
}

// Orders lists every order.
func (c *Client) Orders(ctx context.Context) ([]order.Record, error) {
	body, err := c.do(ctx, call{
		op:       "admin orders",
		method:   http.MethodGet,
		path:     "/admin/order/",
		bearer:   true,
		fallback: "Failed to fetch orders",
	})
	if err != nil {
		return nil, err
	}

	orders := []order.Record{}
	if err := decodeData("admin orders", body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderUpdate changes an order's status fields. Empty fields are not sent.
type OrderUpdate struct {
	OrderStatus   order.Status `json:"order_status,omitempty"`
	PaymentStatus string       `json:"payment_status,omitempty"`
}

// UpdateOrder changes an order's status.
func (c *Client) UpdateOrder(ctx context.Context, id string, u OrderUpdate) error {
	_, err := c.do(ctx, call{
		op:       "admin update order",
		method:   http.MethodPut,
		path:     "/admin/order/" + url.PathEscape(id),
		bearer:   true,
		fallback: "Failed to update order",
		body:     u,
	})
	return err
}
