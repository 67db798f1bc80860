package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/pricing"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupApp builds the full HTTP stack on an in-memory SQLite database and the fake
// payment gateway.
func setupApp(t *testing.T) (*fiber.App, *payments.FakeGateway) {
	t.Helper()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("APP_ENV", "test")
	v.Set("JWT_SECRET", "test_jwt_secret")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	gateway := payments.NewFakeGateway()
	server := app.NewServer(cfg, app.Dependencies{DB: db, Gateway: gateway}, zap.NewNop())
	return server, gateway
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	session string
}

func do(t *testing.T, server *fiber.App, r request) *http.Response {
	t.Helper()
	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(r.method, r.path, reader)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.session != "" {
		req.Header.Set(middleware.SessionHeader, r.session)
	}
	resp, err := server.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func register(t *testing.T, server *fiber.App, email string) string {
	t.Helper()
	resp := do(t, server, request{method: http.MethodPost, path: "/api/v1/auth/register", body: map[string]string{
		"name":             "Test Customer",
		"email":            email,
		"password":         "password123",
		"confirm_password": "password123",
		"city":             "Bandung",
		"address":          "Jl. Merdeka 1",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Message string      `json:"message"`
		Token   string      `json:"token"`
		User    models.User `json:"user"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "User registered successfully", body.Message)
	assert.Equal(t, email, body.User.Email)
	require.NotEmpty(t, body.Token)
	return body.Token
}

// seedProduct creates a brand, a category and one product priced 100 with a 10%
// discount, and returns the product ID.
func seedProduct(t *testing.T, server *fiber.App, token string) string {
	t.Helper()

	resp := do(t, server, request{method: http.MethodPost, path: "/api/v1/brands", token: token, body: map[string]string{"name": "Acme"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var brand models.Brand
	decode(t, resp, &brand)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/categories", token: token, body: map[string]string{"name": "Phones"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var category models.Category
	decode(t, resp, &category)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/products", token: token, body: map[string]any{
		"name":        "Phone",
		"price":       "100",
		"discount":    10,
		"stock":       5,
		"description": "A phone",
		"colors":      "black,white",
		"brand_id":    brand.ID,
		"category_id": category.ID,
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Product models.Product `json:"product"`
	}
	decode(t, resp, &created)
	require.NotEmpty(t, created.Product.ID)
	assert.Equal(t, "image.jpg", created.Product.Image1)
	return created.Product.ID
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestHealth(t *testing.T) {
	server, _ := setupApp(t)

	resp := do(t, server, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"healthy"`)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	server, _ := setupApp(t)
	register(t, server, "test@example.com")

	// Duplicate email
	resp := do(t, server, request{method: http.MethodPost, path: "/api/v1/auth/register", body: map[string]string{
		"name":             "Someone Else",
		"email":            "test@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Mismatched confirmation
	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/auth/register", body: map[string]string{
		"name":             "Mismatch",
		"email":            "mismatch@example.com",
		"password":         "password123",
		"confirm_password": "password124",
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var invalid struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, resp, &invalid)
	assert.Contains(t, invalid.Errors, "ConfirmPassword")

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var login map[string]string
	decode(t, resp, &login)
	assert.NotEmpty(t, login["token"])

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{
		"email":    "test@example.com",
		"password": "wrong-password",
	}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var failed map[string]string
	decode(t, resp, &failed)
	assert.Equal(t, "/api/v1/auth/login", failed["redirect"])
}

func TestCatalogEndpoints(t *testing.T) {
	server, _ := setupApp(t)

	// Writes require a token
	resp := do(t, server, request{method: http.MethodPost, path: "/api/v1/brands", body: map[string]string{"name": "Acme"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := register(t, server, "catalog@example.com")
	productID := seedProduct(t, server, token)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/brands", token: token, body: map[string]string{"name": "Acme"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/products", token: token, body: map[string]any{
		"name":        "Orphan",
		"price":       "10",
		"description": "No brand",
		"colors":      "red",
		"brand_id":    "missing",
		"category_id": "missing",
	}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Reads are public
	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/products"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.Page
	decode(t, resp, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, productID, page.Items[0].ID)
	assert.Equal(t, 1, page.Pages)

	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/products/" + productID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		Product models.Product `json:"product"`
		Colors  []string       `json:"colors"`
	}
	decode(t, resp, &detail)
	assert.Equal(t, []string{"black", "white"}, detail.Colors)

	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/products/missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/search?q=phon"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found struct {
		Products []models.Product `json:"products"`
	}
	decode(t, resp, &found)
	assert.Len(t, found.Products, 1)

	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/brands/" + detail.Product.BrandID + "/products"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/categories/missing/products"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartEndpoints(t *testing.T) {
	server, _ := setupApp(t)
	token := register(t, server, "cart@example.com")
	productID := seedProduct(t, server, token)
	session := "cart-session"

	resp := do(t, server, request{method: http.MethodPost, path: "/api/v1/cart/items", session: session,
		body: map[string]any{"product_id": productID, "quantity": 2}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session, resp.Header.Get(middleware.SessionHeader))
	var added struct {
		Status string               `json:"status"`
		Cart   services.CartSummary `json:"cart"`
	}
	decode(t, resp, &added)
	assert.Equal(t, "added", added.Status)
	require.Len(t, added.Cart.Items, 1)
	assert.Equal(t, "black", added.Cart.Items[0].Color)

	// Adding the same product again keeps the first line untouched
	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/cart/items", session: session,
		body: map[string]any{"product_id": productID, "quantity": 9, "color": "white"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dup struct {
		Status string               `json:"status"`
		Cart   services.CartSummary `json:"cart"`
	}
	decode(t, resp, &dup)
	assert.Equal(t, "duplicate", dup.Status)
	assert.Equal(t, 2, dup.Cart.Items[0].Quantity)

	resp = do(t, server, request{method: http.MethodPut, path: "/api/v1/cart/items/" + productID, session: session,
		body: map[string]any{"quantity": 3, "color": "white"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/cart", session: session})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary services.CartSummary
	decode(t, resp, &summary)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, "white", summary.Items[0].Color)
	assertMoney(t, "270", summary.Totals.Subtotal)
	assertMoney(t, "16.20", summary.Totals.Tax)
	assertMoney(t, "286.20", summary.Totals.GrandTotal)

	resp = do(t, server, request{method: http.MethodPut, path: "/api/v1/cart/items/missing", session: session,
		body: map[string]any{"quantity": 1}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/cart/items", session: session,
		body: map[string]any{"product_id": productID, "quantity": 0}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodDelete, path: "/api/v1/cart/items/missing", session: session})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var removed struct {
		Removed bool                 `json:"removed"`
		Cart    services.CartSummary `json:"cart"`
	}
	decode(t, resp, &removed)
	assert.False(t, removed.Removed)
	assert.Len(t, removed.Cart.Items, 1)

	// Another session sees its own, empty cart
	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/cart", session: "other-session"})
	var other services.CartSummary
	decode(t, resp, &other)
	assert.Empty(t, other.Items)

	resp = do(t, server, request{method: http.MethodDelete, path: "/api/v1/cart", session: session})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/cart", session: session})
	decode(t, resp, &summary)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Totals.GrandTotal.IsZero())
}

func TestCheckoutAndPayment(t *testing.T) {
	server, gateway := setupApp(t)
	token := register(t, server, "buyer@example.com")
	productID := seedProduct(t, server, token)
	session := "checkout-session"

	// Checkout needs a login
	resp := do(t, server, request{method: http.MethodPost, path: "/api/v1/orders", session: session})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/orders", token: token, session: session})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/cart/items", session: session,
		body: map[string]any{"product_id": productID, "quantity": 3}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodPost, path: "/api/v1/orders", token: token, session: session})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var placed struct {
		Invoice string         `json:"invoice"`
		Order   models.Order   `json:"order"`
		Totals  pricing.Totals `json:"totals"`
	}
	decode(t, resp, &placed)
	require.NotEmpty(t, placed.Invoice)
	assert.Equal(t, models.OrderStatusPending, placed.Order.Status)
	require.Len(t, placed.Order.Items, 1)
	assert.Empty(t, placed.Order.Items[0].Image)
	assertMoney(t, "286.20", placed.Totals.GrandTotal)

	// The cart was emptied with the order
	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/cart", session: session})
	var summary services.CartSummary
	decode(t, resp, &summary)
	assert.Empty(t, summary.Items)

	orderPath := "/api/v1/orders/" + placed.Invoice
	resp = do(t, server, request{method: http.MethodGet, path: orderPath, token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail services.OrderDetail
	decode(t, resp, &detail)
	assert.Equal(t, "buyer@example.com", detail.Customer.Email)
	assertMoney(t, "270", detail.Totals.Subtotal)
	assertMoney(t, "16.20", detail.Totals.Tax)

	resp = do(t, server, request{method: http.MethodGet, path: orderPath + "/pdf", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), placed.Invoice+".pdf")
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	// Orders are private to their customer
	strangerToken := register(t, server, "stranger@example.com")
	resp = do(t, server, request{method: http.MethodGet, path: orderPath, token: strangerToken})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/payment/config"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pay := func(cardToken string) *http.Response {
		return do(t, server, request{method: http.MethodPost, path: "/api/v1/payment", token: token, body: map[string]string{
			"invoice": placed.Invoice,
			"email":   "buyer@example.com",
			"token":   cardToken,
		}})
	}

	resp = pay(payments.DeclinedToken)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	resp = pay("tok_visa")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var paid struct {
		Receipt services.PaymentReceipt `json:"receipt"`
	}
	decode(t, resp, &paid)
	assert.Equal(t, int64(28620), paid.Receipt.Amount)
	assert.Equal(t, placed.Invoice, paid.Receipt.Invoice)

	// A paid order is never charged twice
	resp = pay("tok_visa")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Len(t, gateway.Charges(), 1)

	resp = do(t, server, request{method: http.MethodGet, path: "/api/v1/orders", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decode(t, resp, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusPaid, orders[0].Status)
}
