package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/report"
	"storefront/internal/session"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultReportDays is the report window used when no range is given.
const DefaultReportDays = 30

// adminService implements AdminService.
type adminService struct {
	backend AdminBackend
	guard   *SessionGuard
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAdminService creates a new admin service.
func NewAdminService(adminBackend AdminBackend, guard *SessionGuard, logger zerolog.Logger) AdminService {
	return &adminService{
		backend: adminBackend,
		guard:   guard,
		logger:  logger.With().Str("service", "admin").Logger(),
		now:     time.Now,
	}
}

func (s *adminService) Products(ctx context.Context, sess *session.Session) ([]model.Product, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}
	products, err := s.backend.AdminProducts(ctx, sess.Token)
	if err != nil {
		return nil, s.guard.Check(ctx, sess, err)
	}
	return products, nil
}

func (s *adminService) Product(ctx context.Context, sess *session.Session, id int64) (*model.Product, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}
	product, err := s.backend.AdminProduct(ctx, sess.Token, id)
	if err != nil {
		return nil, s.guard.Check(ctx, sess, err)
	}
	return product, nil
}

// CreateProduct validates in before sending it.
func (s *adminService) CreateProduct(ctx context.Context, sess *session.Session, in model.ProductInput) (*model.Product, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}

	in = normaliseProduct(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	product, err := s.backend.CreateProduct(ctx, sess.Token, in)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", in.Name).Msg("failed to create product")
		return nil, s.guard.Check(ctx, sess, err)
	}

	s.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")
	return product, nil
}

// UpdateProduct validates in before sending it.
func (s *adminService) UpdateProduct(ctx context.Context, sess *session.Session, id int64, in model.ProductInput) (*model.Product, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}

	in = normaliseProduct(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	product, err := s.backend.UpdateProduct(ctx, sess.Token, id, in)
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, s.guard.Check(ctx, sess, err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")
	return product, nil
}

func (s *adminService) DeleteProduct(ctx context.Context, sess *session.Session, id int64) error {
	if err := authorize(sess); err != nil {
		return err
	}
	if err := s.backend.DeleteProduct(ctx, sess.Token, id); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return s.guard.Check(ctx, sess, err)
	}
	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

// Orders lists every order, optionally filtered by status.
func (s *adminService) Orders(ctx context.Context, sess *session.Session, status string) ([]model.Order, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}

	var filter model.OrderStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := model.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}

	orders, err := s.backend.AdminOrders(ctx, sess.Token, filter)
	if err != nil {
		return nil, s.guard.Check(ctx, sess, err)
	}
	return orders, nil
}

// UpdateOrderStatus rejects unknown statuses before any network call.
func (s *adminService) UpdateOrderStatus(ctx context.Context, sess *session.Session, id int64, status string) error {
	if err := authorize(sess); err != nil {
		return err
	}

	parsed, err := model.ParseOrderStatus(status)
	if err != nil {
		return err
	}

	if err := s.backend.UpdateOrderStatus(ctx, sess.Token, id, parsed); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", id).Str("status", string(parsed)).Msg("failed to update order status")
		return s.guard.Check(ctx, sess, err)
	}

	s.logger.Info().Int64("order_id", id).Str("status", string(parsed)).Msg("order status updated")
	return nil
}

// VerifyPayment marks an order's payment verified. A reference is required.
func (s *adminService) VerifyPayment(ctx context.Context, sess *session.Session, id int64, reference string) error {
	if err := authorize(sess); err != nil {
		return err
	}

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return model.NewValidationError("reference", "is required")
	}

	if err := s.backend.VerifyPayment(ctx, sess.Token, id, reference); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", id).Msg("failed to verify payment")
		return s.guard.Check(ctx, sess, err)
	}

	s.logger.Info().Int64("order_id", id).Msg("payment verified")
	return nil
}

// Dashboard fetches the backend dashboard and the order list concurrently
// and adds the number of orders still awaiting payment verification.
func (s *adminService) Dashboard(ctx context.Context, sess *session.Session) (*model.DashboardView, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}

	var (
		dashboard *model.Dashboard
		orders    []model.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dashboard, err = s.backend.Dashboard(gctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.backend.AdminOrders(gctx, sess.Token, "")
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, s.guard.Check(ctx, sess, err)
	}

	view := &model.DashboardView{Dashboard: *dashboard}
	for _, o := range orders {
		if !o.PaymentVerified && o.Status != model.OrderStatusCancelled {
			view.PendingVerifications++
		}
	}
	return view, nil
}

// SalesReport aggregates all orders within [start, end]. When both bounds
// are empty the last DefaultReportDays days are reported.
func (s *adminService) SalesReport(ctx context.Context, sess *session.Session, start, end string) (*model.SalesReport, error) {
	if err := authorize(sess); err != nil {
		return nil, err
	}

	r := report.LastDays(s.now(), DefaultReportDays)
	if strings.TrimSpace(start) != "" || strings.TrimSpace(end) != "" {
		parsed, err := report.ParseRange(start, end)
		if err != nil {
			return nil, err
		}
		r = parsed
	}

	orders, err := s.backend.AdminOrders(ctx, sess.Token, "")
	if err != nil {
		return nil, s.guard.Check(ctx, sess, fmt.Errorf("failed to fetch orders for report: %w", err))
	}

	rep := report.Aggregate(orders, r)
	s.logger.Debug().
		Str("start", rep.Start).
		Str("end", rep.End).
		Int("orders", rep.TotalOrders).
		Msg("sales report computed")
	return &rep, nil
}

func authorize(sess *session.Session) error {
	if sess == nil || !sess.IsAdmin {
		return model.ErrForbidden
	}
	return nil
}

func normaliseProduct(in model.ProductInput) model.ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Category = strings.TrimSpace(in.Category)
	in.Brand = strings.TrimSpace(in.Brand)
	return in
}
