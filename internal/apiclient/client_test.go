package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tiffin-storefront/internal/domain/order"
	"github.com/xenking/tiffin-storefront/pkg/httpmiddleware"
)

// --- Mock implementations ---

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

// --- Helpers ---

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/v1", tokens)
	require.NoError(t, err)
	return c
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// --- Tests ---

func TestNew(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = New("https://kitchen.example/api/v1/", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://kitchen.example/api/v1", c.BaseURL())

	_, err = New("ftp://kitchen.example", nil)
	assert.Error(t, err)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message from body", http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`, "Invalid credentials"},
		{"fallback without message", http.StatusInternalServerError, `{"success":false}`, "Login failed"},
		{"fallback for non JSON", http.StatusBadGateway, `<html>bad gateway</html>`, "Login failed"},
		{"fallback for non string message", http.StatusBadRequest, `{"message":42}`, "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeBody(w, tt.status, tt.body)
			}, nil)

			_, err := c.Login(context.Background(), "9999999999", "secret")

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, "login", apiErr.Op)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestClient_BearerWithoutToken(t *testing.T) {
	var calls atomic.Int32
	h := func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeBody(w, http.StatusOK, `{"data":{}}`)
	}

	for name, tokens := range map[string]TokenSource{
		"nil source":  nil,
		"empty token": staticToken(""),
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, h, tokens)
			_, err := c.Profile(context.Background())
			assert.ErrorIs(t, err, ErrNotAuthenticated)
		})
	}
	assert.Zero(t, calls.Load(), "no request sent without a token")
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"phone": "9876543210", "password": "pw"}, body)

		writeBody(w, http.StatusOK, `{"token":"tok","user":{"id":12,"full_name":"Asha","phone":"9876543210","role":"admin"}}`)
	}, nil)

	creds, err := c.Login(context.Background(), "9876543210", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.Token)
	assert.Equal(t, "12", creds.User.ID.String())
	assert.True(t, creds.User.IsAdmin())
}

func TestClient_Profile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodGet:
			writeBody(w, http.StatusOK, `{"success":true,"data":{"id":"u1","full_name":"Ravi","city":"Pune"}}`)
		case http.MethodPut:
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"address": "12 MG Road"}, body)
			writeBody(w, http.StatusOK, `{"success":true}`)
		}
	}, staticToken("tok"))

	u, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ravi", u.FullName)
	assert.Equal(t, "Pune", u.City)

	require.NoError(t, c.UpdateAddress(context.Background(), "12 MG Road"))
}

func TestClient_MyOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/my-order", r.URL.Path)
		writeBody(w, http.StatusOK, `{"data":[{"id":3,"meal_type":"lunch","quantity":2,"total_amount":"260.00","payment_status":"paid","order_status":"out_for_delivery"}]}`)
	}, staticToken("tok"))

	orders, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "3", orders[0].ID.String())
	assert.True(t, decimal.NewFromInt(260).Equal(orders[0].TotalAmount))
	assert.Equal(t, "Out For Delivery", orders[0].OrderStatus.Text())
}

func TestClient_Meals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/meal", r.URL.Path)
		writeBody(w, http.StatusOK, `{"success":true,"data":[
			{"id":7,"name":"Veg Thali","price":"120.50","meal_type":"lunch","image_url":"http://img/7.jpg"},
			{"name":"no id"},
			{"id":"8","name":"Poha","price":null,"is_available":false}
		]}`)
	}, nil)

	items, err := c.Meals(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "7", items[0].ID)
	assert.Equal(t, "Lunch", items[0].Category)
	assert.True(t, decimal.RequireFromString("120.5").Equal(items[0].Price))
	assert.True(t, items[0].IsAvailable)

	assert.Equal(t, "Meal", items[1].Category)
	assert.True(t, items[1].Price.IsZero())
	assert.False(t, items[1].IsAvailable)
}

func TestClient_MealsMissingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, http.StatusOK, `{"success":true}`)
	}, nil)

	items, err := c.Meals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestClient_PlaceOrder(t *testing.T) {
	var wire map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/order", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		writeBody(w, http.StatusCreated, `{"data":{"id":101}}`)
	}, staticToken("tok"))

	req := order.Request{
		MealType:    order.MealLunch,
		Quantity:    2,
		Subtotal:    decimal.NewFromInt(240),
		DeliveryFee: decimal.NewFromInt(30),
		Total:       decimal.NewFromInt(270),
		Customer:    order.Customer{Name: "Asha", Phone: "98765", Address: "Flat 4"},
		Lines: []order.Line{{
			ItemID: "7", Name: "Veg Thali", Category: "Lunch",
			Price: decimal.NewFromInt(120), Quantity: 2, Subtotal: decimal.NewFromInt(240),
		}},
	}
	placed, err := c.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "101", placed.ID)
	assert.Equal(t, order.StatusPlaced, placed.Status)

	assert.Equal(t, "lunch", wire["meal_type"])
	assert.EqualValues(t, 270, wire["total_amount"])
	assert.EqualValues(t, 30, wire["delivery_fee"])
	assert.Equal(t, "Asha", wire["customer_name"])
	assert.NotContains(t, wire, "instructions")
	items, ok := wire["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, "7", line["meal_id"])
	assert.EqualValues(t, 120, line["price"])
}

func TestClient_PlaceOrderWithoutID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, http.StatusOK, `{"data":{}}`)
	}, staticToken("tok"))

	placed, err := c.PlaceOrder(context.Background(), order.Request{})
	require.NoError(t, err)
	assert.Empty(t, placed.ID)
	assert.Equal(t, order.StatusPlaced, placed.Status)
}

func TestClient_RequestIDPropagation(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		writeBody(w, http.StatusOK, `{"data":[]}`)
	}, nil)

	ctx := httpmiddleware.WithRequestID(context.Background(), "req-7")
	_, err := c.Meals(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-7", got)
}

func TestClient_MealForm(t *testing.T) {
	var (
		fields   = map[string]string{}
		fileName string
		fileBody string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/admin/meal/7", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer func() { _ = f.Close() }()
		data, _ := io.ReadAll(f)
		fileName, fileBody = hdr.Filename, string(data)

		writeBody(w, http.StatusOK, `{"data":{"id":7,"name":"Paneer Thali","price":150,"meal_type":"dinner"}}`)
	}, staticToken("tok"))

	item, err := c.UpdateMeal(context.Background(), "7", MealForm{
		Name:     "Paneer Thali",
		MealType: "dinner",
		Price:    decimal.NewFromInt(150),
		Image:    &Upload{Filename: "thali.jpg", Content: strings.NewReader("jpeg")},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"name": "Paneer Thali", "meal_type": "dinner", "price": "150"}, fields)
	assert.Equal(t, "thali.jpg", fileName)
	assert.Equal(t, "jpeg", fileBody)
	assert.Equal(t, "Dinner", item.Category)
}

func TestClient_MealFormValidation(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) }, staticToken("tok"))

	tests := []MealForm{
		{MealType: "lunch"},
		{Name: "Thali"},
		{Name: "Thali", MealType: "lunch", Price: decimal.NewFromInt(-1)},
	}
	for _, f := range tests {
		_, err := c.CreateMeal(context.Background(), f)
		assert.Error(t, err)
	}
	assert.Zero(t, calls.Load())
}

func TestClient_AdminCalls(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/v1/admin/dashboard/stats":
			writeBody(w, http.StatusOK, `{"data":{"totalOrders":4,"revenue":"1200"}}`)
		case "/api/v1/admin/user":
			writeBody(w, http.StatusOK, `{"data":[{"id":1,"full_name":"A","is_active":false}]}`)
		case "/api/v1/admin/order/":
			writeBody(w, http.StatusOK, `{"data":[{"id":9,"order_status":"placed"}]}`)
		case "/api/v1/admin/order/9":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"order_status": "delivered"}, body)
			writeBody(w, http.StatusOK, `{}`)
		default:
			writeBody(w, http.StatusOK, `{}`)
		}
	}, staticToken("tok"))
	ctx := context.Background()

	stats, err := c.DashboardStats(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalOrders":4,"revenue":"1200"}`, string(stats))

	users, err := c.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].IsActive)
	assert.False(t, *users[0].IsActive)

	orders, err := c.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	require.NoError(t, c.UpdateOrder(ctx, "9", OrderUpdate{OrderStatus: order.StatusDelivered}))
	require.NoError(t, c.ToggleUser(ctx, "1"))
	require.NoError(t, c.ToggleMeal(ctx, "7"))
	require.NoError(t, c.DeleteMeal(ctx, "7"))

	assert.Equal(t, []string{
		"GET /api/v1/admin/dashboard/stats",
		"GET /api/v1/admin/user",
		"GET /api/v1/admin/order/",
		"PUT /api/v1/admin/order/9",
		"PUT /api/v1/admin/user/1/toggle",
		"PUT /api/v1/admin/meal/7/toggle",
		"DELETE /api/v1/admin/meal/7",
	}, seen)
}
