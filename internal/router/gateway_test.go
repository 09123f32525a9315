package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/backend"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommerce is an in-memory stand-in for the commerce REST API.
type fakeCommerce struct {
	mu       sync.Mutex
	prices   map[int64]float64
	cart     map[int64]int
	rejected bool
	checkout *model.CheckoutRequest
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		prices: map[int64]float64{1: 100, 2: 50},
		cart:   map[int64]int{},
	}
}

func (f *fakeCommerce) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, model.LoginResponse{
			Token: "tok-1",
			User:  model.User{ID: 7, Username: "ana", Role: "customer"},
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(f.authenticate)
		r.Get("/cart", func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			items := []model.CartItem{}
			for id, qty := range f.cart {
				items = append(items, model.CartItem{ProductID: id, UnitPrice: f.prices[id], Quantity: qty})
			}
			writeBody(w, http.StatusOK, map[string]any{"items": items})
		})
		r.Post("/cart/add", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				ProductID int64 `json:"product_id"`
				Quantity  int   `json:"quantity"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.cart[body.ProductID] += body.Quantity
			f.mu.Unlock()
			writeBody(w, http.StatusOK, map[string]string{"message": "added"})
		})
		r.Post("/checkout", func(w http.ResponseWriter, r *http.Request) {
			var req model.CheckoutRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			f.mu.Lock()
			f.checkout = &req
			f.cart = map[int64]int{}
			f.mu.Unlock()
			writeBody(w, http.StatusCreated, model.Order{ID: 101, Status: model.OrderStatusPending})
		})
	})
	return r
}

func (f *fakeCommerce) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		rejected := f.rejected
		f.mu.Unlock()
		if rejected || r.Header.Get("Authorization") != "Bearer tok-1" {
			writeBody(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeBody(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type gateway struct {
	t       *testing.T
	handler http.Handler
	backend *fakeCommerce
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	logger := zerolog.Nop()

	fake := newFakeCommerce()
	srv := httptest.NewServer(fake.routes())
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger)
	require.NoError(t, err)

	sessions := session.NewManager(session.NewMemoryStore(), time.Hour, logger)
	registry := checkout.NewRegistry()
	sessions.OnEnd(registry.Drop)

	promos, err := coupon.NewCatalog(context.Background(), nil, nil, logger)
	require.NoError(t, err)

	guard := service.NewSessionGuard(sessions, nil, logger)
	carts := service.NewCartService(client, guard, config.ContractLegacy, nil, logger)
	h := Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService(client, sessions, logger), logger),
		Catalog:  handler.NewCatalogHandler(service.NewCatalogService(client, guard, logger), logger),
		Cart:     handler.NewCartHandler(carts, logger),
		Checkout: handler.NewCheckoutHandler(service.NewCheckoutService(carts, client, promos, registry, nil, guard, nil, 0, logger), logger),
		Admin:    handler.NewAdminHandler(service.NewAdminService(client, guard, logger), logger),
	}

	return &gateway{t: t, handler: New(h, Options{Sessions: sessions}, logger), backend: fake}
}

func (g *gateway) do(method, path, sessionID string, body any, out any) int {
	g.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(g.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if sessionID != "" {
		req.Header.Set(session.HeaderName, sessionID)
	}
	w := httptest.NewRecorder()
	g.handler.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(g.t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func (g *gateway) login() string {
	g.t.Helper()
	var resp model.SessionResponse
	status := g.do(http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ana@example.com", Password: "secret1"}, &resp)
	require.Equal(g.t, http.StatusOK, status)
	require.NotEmpty(g.t, resp.SessionID)
	return resp.SessionID
}

func TestGateway_CheckoutFlow(t *testing.T) {
	g := newGateway(t)
	sid := g.login()

	var cart model.Cart
	require.Equal(t, http.StatusOK, g.do(http.MethodPost, "/api/cart/items", sid, model.AddItemRequest{ProductID: 1, Quantity: 2}, &cart))
	assert.Equal(t, 200.0, cart.Subtotal)

	var view checkout.View
	require.Equal(t, http.StatusCreated, g.do(http.MethodPost, "/api/checkout", sid, nil, &view))
	assert.Equal(t, checkout.StateShipping, view.State)

	addr := model.ShippingAddress{
		FullName:    "Ana Cruz",
		Phone:       "09171234567",
		Email:       "ana@example.com",
		AddressLine: "1 Main St",
		City:        "Manila",
		Province:    "Metro Manila",
		PostalCode:  "1000",
	}
	require.Equal(t, http.StatusOK, g.do(http.MethodPut, "/api/checkout/shipping", sid, addr, &view))
	assert.Equal(t, checkout.StatePayment, view.State)

	require.Equal(t, http.StatusOK, g.do(http.MethodPut, "/api/checkout/payment", sid,
		model.PaymentSelection{Method: model.PaymentCashOnDelivery}, &view))
	assert.Equal(t, checkout.StateReview, view.State)

	require.Equal(t, http.StatusOK, g.do(http.MethodPost, "/api/checkout/promo", sid, model.PromoRequest{Code: "ZANE10"}, &view))
	require.NotNil(t, view.Draft)
	assert.Equal(t, 280.0, view.Draft.Total)

	require.Equal(t, http.StatusOK, g.do(http.MethodPost, "/api/checkout/submit", sid, nil, &view))
	assert.Equal(t, checkout.StateConfirmation, view.State)
	require.NotNil(t, view.Order)
	assert.Equal(t, int64(101), view.Order.ID)

	require.NotNil(t, g.backend.checkout)
	assert.Equal(t, "cash_on_delivery", g.backend.checkout.PaymentMethod)
	assert.Equal(t, "Manila", g.backend.checkout.ShippingAddress.City)

	var errResp model.ErrorResponse
	assert.Equal(t, http.StatusNotFound, g.do(http.MethodGet, "/api/checkout", sid, nil, &errResp))
	assert.Equal(t, model.ErrCodeCheckoutNotStarted, errResp.Error)
}

func TestGateway_Logout(t *testing.T) {
	g := newGateway(t)
	sid := g.login()

	assert.Equal(t, http.StatusNoContent, g.do(http.MethodPost, "/api/auth/logout", sid, nil, nil))

	var errResp model.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodGet, "/api/cart", sid, nil, &errResp))
	assert.Equal(t, model.ErrCodeSessionNotFound, errResp.Error)
}

func TestGateway_BackendRejectsToken(t *testing.T) {
	g := newGateway(t)
	sid := g.login()

	g.backend.mu.Lock()
	g.backend.rejected = true
	g.backend.mu.Unlock()

	var errResp model.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodGet, "/api/cart", sid, nil, &errResp))
	assert.Equal(t, model.ErrCodeUnauthorised, errResp.Error)

	assert.Equal(t, http.StatusUnauthorized, g.do(http.MethodGet, "/api/cart", sid, nil, &errResp))
	assert.Equal(t, model.ErrCodeSessionNotFound, errResp.Error)
}
