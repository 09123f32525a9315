package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/backend"
	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req model.LoginRequest) (*service.Login, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Login), args.Error(1)
}

func (m *MockAuthService) AdminLogin(ctx context.Context, req model.LoginRequest) (*service.Login, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Login), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Products(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) Product(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) Orders(ctx context.Context, s *session.Session) ([]model.Order, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*model.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) FetchCart(ctx context.Context, s *session.Session) (*model.Cart, error) {
	return m.cart(m.Called(ctx, s))
}

func (m *MockCartService) Add(ctx context.Context, s *session.Session, productID int64, delta int) (*model.Cart, error) {
	return m.cart(m.Called(ctx, s, productID, delta))
}

func (m *MockCartService) SetQuantity(ctx context.Context, s *session.Session, productID int64, quantity int) (*model.Cart, error) {
	return m.cart(m.Called(ctx, s, productID, quantity))
}

func (m *MockCartService) Decrease(ctx context.Context, s *session.Session, productID int64, by int) (*model.Cart, error) {
	return m.cart(m.Called(ctx, s, productID, by))
}

func (m *MockCartService) Remove(ctx context.Context, s *session.Session, productID int64) (*model.Cart, error) {
	return m.cart(m.Called(ctx, s, productID))
}

func (m *MockCartService) Clear(ctx context.Context, s *session.Session) (*model.Cart, error) {
	return m.cart(m.Called(ctx, s))
}

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) view(args mock.Arguments) (checkout.View, error) {
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) Begin(ctx context.Context, s *session.Session) (checkout.View, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) Current(ctx context.Context, s *session.Session) (checkout.View, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) SubmitShipping(ctx context.Context, s *session.Session, addr model.ShippingAddress) (checkout.View, error) {
	return m.view(m.Called(ctx, s, addr))
}

func (m *MockCheckoutService) SelectShippingMethod(ctx context.Context, s *session.Session, method model.ShippingMethod) (checkout.View, error) {
	return m.view(m.Called(ctx, s, method))
}

func (m *MockCheckoutService) SubmitPayment(ctx context.Context, s *session.Session, sel model.PaymentSelection) (checkout.View, error) {
	return m.view(m.Called(ctx, s, sel))
}

func (m *MockCheckoutService) ApplyPromo(ctx context.Context, s *session.Session, code string) (checkout.View, error) {
	return m.view(m.Called(ctx, s, code))
}

func (m *MockCheckoutService) RemovePromo(ctx context.Context, s *session.Session) (checkout.View, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) Back(ctx context.Context, s *session.Session) (checkout.View, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) Edit(ctx context.Context, s *session.Session, step string) (checkout.View, error) {
	return m.view(m.Called(ctx, s, step))
}

func (m *MockCheckoutService) Submit(ctx context.Context, s *session.Session) (checkout.View, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) Abandon(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockAdminService is a mock implementation of service.AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Products(ctx context.Context, s *session.Session) ([]model.Product, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockAdminService) Product(ctx context.Context, s *session.Session, id int64) (*model.Product, error) {
	args := m.Called(ctx, s, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockAdminService) CreateProduct(ctx context.Context, s *session.Session, in model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, s, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockAdminService) UpdateProduct(ctx context.Context, s *session.Session, id int64, in model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, s, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockAdminService) DeleteProduct(ctx context.Context, s *session.Session, id int64) error {
	args := m.Called(ctx, s, id)
	return args.Error(0)
}

func (m *MockAdminService) Orders(ctx context.Context, s *session.Session, status string) ([]model.Order, error) {
	args := m.Called(ctx, s, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockAdminService) UpdateOrderStatus(ctx context.Context, s *session.Session, id int64, status string) error {
	args := m.Called(ctx, s, id, status)
	return args.Error(0)
}

func (m *MockAdminService) VerifyPayment(ctx context.Context, s *session.Session, id int64, reference string) error {
	args := m.Called(ctx, s, id, reference)
	return args.Error(0)
}

func (m *MockAdminService) Dashboard(ctx context.Context, s *session.Session) (*model.DashboardView, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardView), args.Error(1)
}

func (m *MockAdminService) SalesReport(ctx context.Context, s *session.Session, start, end string) (*model.SalesReport, error) {
	args := m.Called(ctx, s, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SalesReport), args.Error(1)
}

func testSession(admin bool) *session.Session {
	role := "customer"
	if admin {
		role = model.RoleAdmin
	}
	return &session.Session{
		ID:        uuid.New(),
		Token:     "tok",
		UserID:    7,
		Role:      role,
		IsAdmin:   admin,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// serve routes a single request through a chi router so URL parameters
// resolve, attaching sess to the request context when non-nil.
func serve(method, pattern, target, body string, sess *session.Session, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if sess != nil {
		req = req.WithContext(session.WithSession(req.Context(), sess))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func apiError(kind error, status int, message string) error {
	return &backend.APIError{Method: http.MethodGet, Endpoint: "/test", Status: status, Message: message, Kind: kind}
}
