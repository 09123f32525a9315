package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/backend"
	"storefront/internal/coupon"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartBackend is a mock implementation of CartBackend.
type MockCartBackend struct {
	mock.Mock
}

func (m *MockCartBackend) GetCart(ctx context.Context, token string) (*model.Cart, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartBackend) AddToCart(ctx context.Context, token string, productID int64, quantity int) error {
	return m.Called(ctx, token, productID, quantity).Error(0)
}

func (m *MockCartBackend) UpdateCartItem(ctx context.Context, token string, productID int64, quantity int) error {
	return m.Called(ctx, token, productID, quantity).Error(0)
}

func (m *MockCartBackend) DecreaseCartItem(ctx context.Context, token string, productID int64, decreaseBy int) error {
	return m.Called(ctx, token, productID, decreaseBy).Error(0)
}

func (m *MockCartBackend) RemoveCartItem(ctx context.Context, token string, productID int64) error {
	return m.Called(ctx, token, productID).Error(0)
}

func (m *MockCartBackend) ClearCart(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// MockCartService is a mock implementation of CartService.
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

// MockOrderBackend is a mock implementation of OrderBackend.
type MockOrderBackend struct {
	mock.Mock
}

func (m *MockOrderBackend) Checkout(ctx context.Context, token string, req model.CheckoutRequest) (*model.Order, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockPromoCatalog is a mock implementation of coupon.Catalog.
type MockPromoCatalog struct {
	mock.Mock
}

func (m *MockPromoCatalog) Lookup(ctx context.Context, code string) (coupon.Promotion, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(coupon.Promotion), args.Error(1)
}

func (m *MockPromoCatalog) Size() int {
	return m.Called().Int(0)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderPlaced(ctx context.Context, e events.OrderPlaced) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// MockAuthBackend is a mock implementation of AuthBackend.
type MockAuthBackend struct {
	mock.Mock
}

func (m *MockAuthBackend) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

func (m *MockAuthBackend) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockCatalogBackend is a mock implementation of CatalogBackend.
type MockCatalogBackend struct {
	mock.Mock
}

func (m *MockCatalogBackend) Products(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogBackend) Product(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogBackend) Orders(ctx context.Context, token string) ([]model.Order, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockAdminBackend is a mock implementation of AdminBackend.
type MockAdminBackend struct {
	mock.Mock
}

func (m *MockAdminBackend) product(args mock.Arguments) (*model.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockAdminBackend) AdminProducts(ctx context.Context, token string) ([]model.Product, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockAdminBackend) AdminProduct(ctx context.Context, token string, id int64) (*model.Product, error) {
	return m.product(m.Called(ctx, token, id))
}

func (m *MockAdminBackend) CreateProduct(ctx context.Context, token string, in model.ProductInput) (*model.Product, error) {
	return m.product(m.Called(ctx, token, in))
}

func (m *MockAdminBackend) UpdateProduct(ctx context.Context, token string, id int64, in model.ProductInput) (*model.Product, error) {
	return m.product(m.Called(ctx, token, id, in))
}

func (m *MockAdminBackend) DeleteProduct(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *MockAdminBackend) AdminOrders(ctx context.Context, token string, status model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, token, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockAdminBackend) UpdateOrderStatus(ctx context.Context, token string, id int64, status model.OrderStatus) error {
	return m.Called(ctx, token, id, status).Error(0)
}

func (m *MockAdminBackend) VerifyPayment(ctx context.Context, token string, id int64, reference string) error {
	return m.Called(ctx, token, id, reference).Error(0)
}

func (m *MockAdminBackend) Dashboard(ctx context.Context, token string) (*model.Dashboard, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dashboard), args.Error(1)
}

// testSessions bundles a memory-backed session manager with a guard over it.
type testSessions struct {
	manager *session.Manager
	store   *session.MemoryStore
	guard   *SessionGuard
}

func newTestSessions() *testSessions {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, time.Hour, zerolog.Nop())
	return &testSessions{
		manager: manager,
		store:   store,
		guard:   NewSessionGuard(manager, nil, zerolog.Nop()),
	}
}

// open stores a live customer session carrying token.
func (ts *testSessions) open(t *testing.T, token string) *session.Session {
	t.Helper()
	s, err := ts.manager.Create(context.Background(), token, model.User{ID: 7, Role: "customer"})
	require.NoError(t, err)
	return s
}

// openAdmin stores a live admin session carrying token.
func (ts *testSessions) openAdmin(t *testing.T, token string) *session.Session {
	t.Helper()
	s, err := ts.manager.Create(context.Background(), token, model.User{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)
	return s
}

// alive reports whether the session is still stored.
func (ts *testSessions) alive(s *session.Session) bool {
	_, err := ts.store.Get(context.Background(), s.ID)
	return err == nil
}

func apiError(kind error, status int) error {
	return &backend.APIError{Method: "GET", Endpoint: "/test", Status: status, Kind: kind}
}

func cartOf(items ...model.CartItem) *model.Cart {
	return model.NewCart(items)
}

func testAddress() model.ShippingAddress {
	return model.ShippingAddress{
		FullName:    "Jane Cruz",
		Phone:       "09171234567",
		Email:       "jane@example.com",
		AddressLine: "12 Mabini St",
		City:        "Quezon City",
		Province:    "Metro Manila",
		PostalCode:  "1100",
	}
}
