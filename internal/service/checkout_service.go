package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/backend"
	"storefront/internal/checkout"
	"storefront/internal/coupon"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultCheckoutTimeout bounds a single order submission.
const DefaultCheckoutTimeout = 20 * time.Second

const publishTimeout = 5 * time.Second

// checkoutService implements CheckoutService.
type checkoutService struct {
	carts     CartService
	orders    OrderBackend
	promos    coupon.Catalog
	registry  *checkout.Registry
	publisher events.Publisher
	guard     *SessionGuard
	metrics   *metrics.Metrics
	timeout   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new checkout service. A timeout of zero uses
// DefaultCheckoutTimeout.
func NewCheckoutService(
	carts CartService,
	orders OrderBackend,
	promos coupon.Catalog,
	registry *checkout.Registry,
	publisher events.Publisher,
	guard *SessionGuard,
	m *metrics.Metrics,
	timeout time.Duration,
	logger zerolog.Logger,
) CheckoutService {
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &checkoutService{
		carts:     carts,
		orders:    orders,
		promos:    promos,
		registry:  registry,
		publisher: publisher,
		guard:     guard,
		metrics:   m,
		timeout:   timeout,
		logger:    logger.With().Str("service", "checkout").Logger(),
		now:       time.Now,
	}
}

// Begin starts a wizard from a fresh read of the cart.
func (s *checkoutService) Begin(ctx context.Context, sess *session.Session) (checkout.View, error) {
	cart, err := s.carts.FetchCart(ctx, sess)
	if err != nil {
		return checkout.View{}, err
	}

	w, err := checkout.NewWizard(cart)
	if err != nil {
		return checkout.View{}, err
	}

	if err := s.registry.Start(sess.ID, w, sess.ExpiresAt); err != nil {
		return checkout.View{}, err
	}

	s.logger.Debug().
		Str("session_id", sess.ID.String()).
		Int("items", cart.ItemCount()).
		Msg("checkout started")

	return w.Snapshot(), nil
}

// Current returns the wizard snapshot.
func (s *checkoutService) Current(_ context.Context, sess *session.Session) (checkout.View, error) {
	w, err := s.registry.Get(sess.ID)
	if err != nil {
		return checkout.View{}, err
	}
	return w.Snapshot(), nil
}

func (s *checkoutService) SubmitShipping(_ context.Context, sess *session.Session, addr model.ShippingAddress) (checkout.View, error) {
	return s.step(sess, func(w *checkout.Wizard) (checkout.View, error) {
		return w.SubmitShipping(addr)
	})
}

func (s *checkoutService) SelectShippingMethod(_ context.Context, sess *session.Session, m model.ShippingMethod) (checkout.View, error) {
	return s.step(sess, func(w *checkout.Wizard) (checkout.View, error) {
		return w.SelectShippingMethod(m)
	})
}

func (s *checkoutService) SubmitPayment(_ context.Context, sess *session.Session, sel model.PaymentSelection) (checkout.View, error) {
	return s.step(sess, func(w *checkout.Wizard) (checkout.View, error) {
		return w.SubmitPayment(sel)
	})
}

// ApplyPromo resolves code against the promo catalog. An unknown code is
// rejected and the wizard is left untouched.
func (s *checkoutService) ApplyPromo(ctx context.Context, sess *session.Session, code string) (checkout.View, error) {
	w, err := s.registry.Get(sess.ID)
	if err != nil {
		return checkout.View{}, err
	}

	promo, err := s.promos.Lookup(ctx, code)
	if err != nil {
		s.logger.Debug().Str("promo_code", code).Err(err).Msg("promo code rejected")
		return w.Snapshot(), err
	}

	return w.ApplyPromo(promo)
}

func (s *checkoutService) RemovePromo(_ context.Context, sess *session.Session) (checkout.View, error) {
	return s.step(sess, func(w *checkout.Wizard) (checkout.View, error) {
		return w.RemovePromo()
	})
}

func (s *checkoutService) Back(_ context.Context, sess *session.Session) (checkout.View, error) {
	return s.step(sess, func(w *checkout.Wizard) (checkout.View, error) {
		return w.Back()
	})
}

func (s *checkoutService) Edit(_ context.Context, sess *session.Session, step string) (checkout.View, error) {
	return s.step(sess, func(w *checkout.Wizard) (checkout.View, error) {
		return w.Edit(step)
	})
}

// Submit sends the order under the checkout timeout. The wizard lock is not
// held during the backend call, so concurrent snapshots report Submitting.
func (s *checkoutService) Submit(ctx context.Context, sess *session.Session) (checkout.View, error) {
	w, err := s.registry.Get(sess.ID)
	if err != nil {
		return checkout.View{}, err
	}

	req, draft, err := w.BeginSubmit()
	if err != nil {
		return w.Snapshot(), err
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	order, err := s.orders.Checkout(submitCtx, sess.Token, req)
	if err == nil && (order == nil || order.ID == 0) {
		err = &backend.APIError{
			Method:   http.MethodPost,
			Endpoint: "/checkout",
			Message:  "order confirmation carried no order id",
			Kind:     backend.ErrMalformedResponse,
		}
	}

	view := w.CompleteSubmit(order, err)
	if err != nil {
		outcome := submissionOutcome(err)
		s.metrics.CheckoutSubmission(outcome)
		s.logger.Warn().
			Err(err).
			Str("session_id", sess.ID.String()).
			Str("outcome", outcome).
			Dur("duration", s.now().Sub(start)).
			Msg("order submission failed")
		return view, s.guard.Check(ctx, sess, err)
	}

	s.metrics.CheckoutSubmission(metrics.OutcomeConfirmed)
	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Int64("order_id", order.ID).
		Float64("total", draft.Total).
		Dur("duration", s.now().Sub(start)).
		Msg("order placed")

	s.publishOrderPlaced(ctx, sess, draft, order)
	s.registry.DropIf(sess.ID, w)
	return view, nil
}

// Abandon discards the wizard unless it is mid-submission.
func (s *checkoutService) Abandon(_ context.Context, sess *session.Session) error {
	w, err := s.registry.Get(sess.ID)
	if err != nil {
		return err
	}
	if w.State() == checkout.StateSubmitting {
		return model.ErrSubmissionInProgress
	}
	s.registry.DropIf(sess.ID, w)
	return nil
}

func (s *checkoutService) step(sess *session.Session, fn func(*checkout.Wizard) (checkout.View, error)) (checkout.View, error) {
	w, err := s.registry.Get(sess.ID)
	if err != nil {
		return checkout.View{}, err
	}
	return fn(w)
}

// publishOrderPlaced is best effort: failures are logged and counted but
// never fail the checkout.
func (s *checkoutService) publishOrderPlaced(ctx context.Context, sess *session.Session, draft model.OrderDraft, order *model.Order) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	userID := order.UserID
	if userID == 0 {
		userID = sess.UserID
	}

	itemCount := 0
	for _, item := range draft.Items {
		itemCount += item.Quantity
	}

	err := s.publisher.PublishOrderPlaced(pubCtx, events.OrderPlaced{
		EventID:        uuid.New(),
		Type:           events.TypeOrderPlaced,
		OrderID:        order.ID,
		UserID:         userID,
		PaymentMethod:  string(draft.Payment.Method),
		ShippingMethod: string(draft.ShippingMethod),
		ItemCount:      itemCount,
		Subtotal:       draft.Subtotal,
		Discount:       draft.Discount,
		ShippingFee:    draft.ShippingFee,
		Total:          draft.Total,
		PromoCode:      draft.PromoCode,
		PlacedAt:       s.now().UTC(),
	})
	s.metrics.EventPublished(err)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to publish order placed event")
	}
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, backend.ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, backend.ErrUnauthenticated), errors.Is(err, backend.ErrForbidden):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}
