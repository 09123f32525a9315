package service

import (
	"context"
	"testing"

	"storefront/internal/backend"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Products(t *testing.T) {
	mockBackend := new(MockCatalogBackend)
	ts := newTestSessions()
	svc := NewCatalogService(mockBackend, ts.guard, zerolog.Nop())

	mockBackend.On("Products", mock.Anything).Return([]model.Product{{ID: 1, Name: "Lamp"}}, nil)
	mockBackend.On("Product", mock.Anything, int64(2)).Return(nil, apiError(backend.ErrNotFound, 404))

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = svc.Product(context.Background(), 2)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestCatalogService_Orders(t *testing.T) {
	t.Run("history", func(t *testing.T) {
		mockBackend := new(MockCatalogBackend)
		ts := newTestSessions()
		svc := NewCatalogService(mockBackend, ts.guard, zerolog.Nop())
		sess := ts.open(t, "tok")

		mockBackend.On("Orders", mock.Anything, "tok").Return([]model.Order{{ID: 1}, {ID: 2}}, nil)

		orders, err := svc.Orders(context.Background(), sess)

		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("expired token ends session", func(t *testing.T) {
		mockBackend := new(MockCatalogBackend)
		ts := newTestSessions()
		svc := NewCatalogService(mockBackend, ts.guard, zerolog.Nop())
		sess := ts.open(t, "tok")

		mockBackend.On("Orders", mock.Anything, "tok").Return(nil, apiError(backend.ErrUnauthenticated, 401))

		_, err := svc.Orders(context.Background(), sess)

		assert.ErrorIs(t, err, backend.ErrUnauthenticated)
		assert.False(t, ts.alive(sess))
	})
}

func TestSessionGuard_Check(t *testing.T) {
	t.Run("passes other errors through", func(t *testing.T) {
		ts := newTestSessions()
		sess := ts.open(t, "tok")
		failure := apiError(backend.ErrRequestFailed, 500)

		err := ts.guard.Check(context.Background(), sess, failure)

		assert.Same(t, failure, err)
		assert.True(t, ts.alive(sess))
	})

	t.Run("nil error", func(t *testing.T) {
		ts := newTestSessions()
		sess := ts.open(t, "tok")

		assert.NoError(t, ts.guard.Check(context.Background(), sess, nil))
	})

	t.Run("keeps a session whose token was replaced", func(t *testing.T) {
		ts := newTestSessions()
		sess := ts.open(t, "old")
		stale := *sess
		_, err := ts.store.Update(context.Background(), sess.ID, func(s *session.Session) error {
			s.Token = "new"
			return nil
		})
		require.NoError(t, err)

		err = ts.guard.Check(context.Background(), &stale, apiError(backend.ErrUnauthenticated, 401))

		assert.ErrorIs(t, err, backend.ErrUnauthenticated)
		assert.True(t, ts.alive(sess))
	})

	t.Run("counts invalidations", func(t *testing.T) {
		ts := newTestSessions()
		m := metrics.New(prometheus.NewRegistry())
		guard := NewSessionGuard(ts.manager, m, zerolog.Nop())
		sess := ts.open(t, "tok")

		err := guard.Check(context.Background(), sess, apiError(backend.ErrUnauthenticated, 401))

		assert.ErrorIs(t, err, backend.ErrUnauthenticated)
		assert.False(t, ts.alive(sess))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsInvalidated))
	})
}
