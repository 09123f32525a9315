package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/backend"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminService(t *testing.T) (*adminService, *MockAdminBackend, *testSessions) {
	t.Helper()
	mockBackend := new(MockAdminBackend)
	ts := newTestSessions()
	svc := NewAdminService(mockBackend, ts.guard, zerolog.Nop()).(*adminService)
	return svc, mockBackend, ts
}

func TestAdminService_RequiresAdmin(t *testing.T) {
	svc, mockBackend, ts := newAdminService(t)
	customer := ts.open(t, "tok")
	ctx := context.Background()

	calls := map[string]func(*session.Session) error{
		"products": func(s *session.Session) error { _, err := svc.Products(ctx, s); return err },
		"product":  func(s *session.Session) error { _, err := svc.Product(ctx, s, 1); return err },
		"create": func(s *session.Session) error {
			_, err := svc.CreateProduct(ctx, s, model.ProductInput{Name: "x"})
			return err
		},
		"update": func(s *session.Session) error {
			_, err := svc.UpdateProduct(ctx, s, 1, model.ProductInput{Name: "x"})
			return err
		},
		"delete":    func(s *session.Session) error { return svc.DeleteProduct(ctx, s, 1) },
		"orders":    func(s *session.Session) error { _, err := svc.Orders(ctx, s, ""); return err },
		"status":    func(s *session.Session) error { return svc.UpdateOrderStatus(ctx, s, 1, "shipped") },
		"verify":    func(s *session.Session) error { return svc.VerifyPayment(ctx, s, 1, "ref") },
		"dashboard": func(s *session.Session) error { _, err := svc.Dashboard(ctx, s); return err },
		"report":    func(s *session.Session) error { _, err := svc.SalesReport(ctx, s, "", ""); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(customer), model.ErrForbidden)
			assert.ErrorIs(t, call(nil), model.ErrForbidden)
		})
	}

	assert.Empty(t, mockBackend.Calls)
}

func TestAdminService_CreateProduct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		admin := ts.openAdmin(t, "admin-tok")

		in := model.ProductInput{Name: "Lamp", Price: 499.5, Stock: 3}
		mockBackend.On("CreateProduct", mock.Anything, "admin-tok", in).Return(&model.Product{ID: 11, Name: "Lamp"}, nil)

		product, err := svc.CreateProduct(context.Background(), admin, model.ProductInput{Name: "  Lamp ", Price: 499.5, Stock: 3})

		require.NoError(t, err)
		assert.Equal(t, int64(11), product.ID)
		mockBackend.AssertExpectations(t)
	})

	t.Run("invalid never reaches backend", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		admin := ts.openAdmin(t, "admin-tok")

		_, err := svc.CreateProduct(context.Background(), admin, model.ProductInput{Name: " ", Price: -1, Stock: -2})

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "name")
		assert.Contains(t, ve.Fields, "price")
		assert.Contains(t, ve.Fields, "stock")
		assert.Empty(t, mockBackend.Calls)
	})
}

func TestAdminService_UpdateAndDeleteProduct(t *testing.T) {
	svc, mockBackend, ts := newAdminService(t)
	admin := ts.openAdmin(t, "admin-tok")
	ctx := context.Background()

	in := model.ProductInput{Name: "Lamp", Price: 10, Stock: 1}
	mockBackend.On("UpdateProduct", mock.Anything, "admin-tok", int64(3), in).Return(&model.Product{ID: 3, Name: "Lamp"}, nil)
	mockBackend.On("DeleteProduct", mock.Anything, "admin-tok", int64(3)).Return(apiError(backend.ErrNotFound, 404))

	product, err := svc.UpdateProduct(ctx, admin, 3, in)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", product.Name)

	err = svc.DeleteProduct(ctx, admin, 3)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.True(t, ts.alive(admin))
}

func TestAdminService_Orders(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		filter  model.OrderStatus
		wantErr error
	}{
		{name: "all", status: "", filter: ""},
		{name: "normalised filter", status: " Shipped ", filter: model.OrderStatusShipped},
		{name: "unknown status", status: "lost", wantErr: model.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockBackend, ts := newAdminService(t)
			admin := ts.openAdmin(t, "admin-tok")

			if tt.wantErr == nil {
				mockBackend.On("AdminOrders", mock.Anything, "admin-tok", tt.filter).Return([]model.Order{{ID: 1}}, nil)
			}

			orders, err := svc.Orders(context.Background(), admin, tt.status)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, mockBackend.Calls)
				return
			}
			require.NoError(t, err)
			assert.Len(t, orders, 1)
			mockBackend.AssertExpectations(t)
		})
	}
}

func TestAdminService_UpdateOrderStatus(t *testing.T) {
	svc, mockBackend, ts := newAdminService(t)
	admin := ts.openAdmin(t, "admin-tok")
	ctx := context.Background()

	err := svc.UpdateOrderStatus(ctx, admin, 4, "teleported")
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
	assert.Empty(t, mockBackend.Calls)

	mockBackend.On("UpdateOrderStatus", mock.Anything, "admin-tok", int64(4), model.OrderStatusDelivered).Return(nil)
	require.NoError(t, svc.UpdateOrderStatus(ctx, admin, 4, "DELIVERED"))
	mockBackend.AssertExpectations(t)
}

func TestAdminService_VerifyPayment(t *testing.T) {
	svc, mockBackend, ts := newAdminService(t)
	admin := ts.openAdmin(t, "admin-tok")
	ctx := context.Background()

	err := svc.VerifyPayment(ctx, admin, 4, "  ")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is required", ve.Fields["reference"])

	mockBackend.On("VerifyPayment", mock.Anything, "admin-tok", int64(4), "GC-123").Return(nil)
	require.NoError(t, svc.VerifyPayment(ctx, admin, 4, " GC-123 "))
	mockBackend.AssertExpectations(t)
}

func TestAdminService_Dashboard(t *testing.T) {
	t.Run("counts pending verifications", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		admin := ts.openAdmin(t, "admin-tok")

		mockBackend.On("Dashboard", mock.Anything, "admin-tok").Return(&model.Dashboard{TotalOrders: 4, TotalRevenue: 900}, nil)
		mockBackend.On("AdminOrders", mock.Anything, "admin-tok", model.OrderStatus("")).Return([]model.Order{
			{ID: 1, PaymentVerified: true, Status: model.OrderStatusDelivered},
			{ID: 2, PaymentVerified: false, Status: model.OrderStatusPending},
			{ID: 3, PaymentVerified: false, Status: model.OrderStatusProcessing},
			{ID: 4, PaymentVerified: false, Status: model.OrderStatusCancelled},
		}, nil)

		view, err := svc.Dashboard(context.Background(), admin)

		require.NoError(t, err)
		assert.Equal(t, 4, view.TotalOrders)
		assert.Equal(t, 900.0, view.TotalRevenue)
		assert.Equal(t, 2, view.PendingVerifications)
	})

	t.Run("either failure fails the dashboard", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		admin := ts.openAdmin(t, "admin-tok")

		mockBackend.On("Dashboard", mock.Anything, "admin-tok").Return(&model.Dashboard{}, nil)
		mockBackend.On("AdminOrders", mock.Anything, "admin-tok", model.OrderStatus("")).
			Return(nil, apiError(backend.ErrUnauthenticated, 401))

		_, err := svc.Dashboard(context.Background(), admin)

		assert.ErrorIs(t, err, backend.ErrUnauthenticated)
		assert.False(t, ts.alive(admin))
	})
}

func TestAdminService_SalesReport(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 10, 0, 0, 0, time.UTC) }
	orders := []model.Order{
		{ID: 1, OrderDate: day(1), TotalAmount: 100, PaymentVerified: true, PaymentMethod: "gcash"},
		{ID: 2, OrderDate: day(2), TotalAmount: 200, PaymentVerified: true, PaymentMethod: "gcash"},
		{ID: 3, OrderDate: day(3), TotalAmount: 300, PaymentVerified: false, PaymentMethod: "bank_transfer"},
		{ID: 4, OrderDate: day(20), TotalAmount: 999, PaymentVerified: true, PaymentMethod: "gcash"},
	}

	t.Run("explicit range", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		admin := ts.openAdmin(t, "admin-tok")
		mockBackend.On("AdminOrders", mock.Anything, "admin-tok", model.OrderStatus("")).Return(orders, nil)

		rep, err := svc.SalesReport(context.Background(), admin, "2024-03-01", "2024-03-03")

		require.NoError(t, err)
		assert.Equal(t, 3, rep.TotalOrders)
		assert.Equal(t, 300.0, rep.TotalRevenue)
		assert.Len(t, rep.ByDate, 3)
	})

	t.Run("default range", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		svc.now = func() time.Time { return time.Date(2024, time.March, 25, 8, 0, 0, 0, time.UTC) }
		admin := ts.openAdmin(t, "admin-tok")
		mockBackend.On("AdminOrders", mock.Anything, "admin-tok", model.OrderStatus("")).Return(orders, nil)

		rep, err := svc.SalesReport(context.Background(), admin, "", "")

		require.NoError(t, err)
		assert.Equal(t, "2024-02-25", rep.Start)
		assert.Equal(t, "2024-03-25", rep.End)
		assert.Equal(t, 4, rep.TotalOrders)
		assert.Equal(t, 1299.0, rep.TotalRevenue)
	})

	t.Run("invalid range", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		admin := ts.openAdmin(t, "admin-tok")

		_, err := svc.SalesReport(context.Background(), admin, "2024-03-05", "2024-03-01")

		assert.ErrorIs(t, err, model.ErrInvalidDateRange)
		assert.Empty(t, mockBackend.Calls)
	})

	t.Run("backend failure", func(t *testing.T) {
		svc, mockBackend, ts := newAdminService(t)
		admin := ts.openAdmin(t, "admin-tok")
		mockBackend.On("AdminOrders", mock.Anything, "admin-tok", model.OrderStatus("")).
			Return(nil, apiError(backend.ErrRequestFailed, 500))

		_, err := svc.SalesReport(context.Background(), admin, "2024-03-01", "2024-03-03")

		assert.ErrorIs(t, err, backend.ErrRequestFailed)
	})
}
