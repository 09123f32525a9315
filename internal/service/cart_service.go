package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Cart operations, as recorded by the fallback counter.
const (
	opUpdate   = "update"
	opRemove   = "remove"
	opDecrease = "decrease"
	opClear    = "clear"
)

// sharedFetchTimeout bounds a cart fetch shared between requests, which no
// longer follows any one caller's context.
const sharedFetchTimeout = 15 * time.Second

// cartService implements CartService.
type cartService struct {
	backend  CartBackend
	guard    *SessionGuard
	contract string
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	fetches singleflight.Group
}

// NewCartService creates a new cart service. contract is config.ContractLegacy
// or config.ContractV1; only the legacy contract falls back to alternative
// endpoint shapes.
func NewCartService(
	cartBackend CartBackend,
	guard *SessionGuard,
	contract string,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		backend:  cartBackend,
		guard:    guard,
		contract: contract,
		metrics:  m,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// FetchCart returns the remote cart. Concurrent fetches for one session share
// a single backend call.
func (s *cartService) FetchCart(ctx context.Context, sess *session.Session) (*model.Cart, error) {
	cart, err := s.fetch(ctx, sess)
	if err != nil {
		return nil, s.guard.Check(ctx, sess, err)
	}
	return cart, nil
}

// Add increments the quantity of productID by delta.
func (s *cartService) Add(ctx context.Context, sess *session.Session, productID int64, delta int) (*model.Cart, error) {
	if delta < 1 {
		return nil, model.ErrInvalidQuantity
	}

	if err := s.backend.AddToCart(ctx, sess.Token, productID, delta); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", productID).Msg("add to cart failed")
		return nil, s.guard.Check(ctx, sess, err)
	}

	return s.refresh(ctx, sess)
}

// SetQuantity sets an absolute quantity. A quantity of zero or less removes
// the item.
func (s *cartService) SetQuantity(ctx context.Context, sess *session.Session, productID int64, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, sess, productID)
	}

	err := s.backend.UpdateCartItem(ctx, sess.Token, productID, quantity)
	if err != nil && s.canFallback(ctx, err) {
		s.noteFallback(opUpdate, productID, err)
		err = s.setByDifference(ctx, sess, productID, quantity)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", productID).Int("quantity", quantity).Msg("cart update failed")
		return nil, s.guard.Check(ctx, sess, err)
	}

	return s.refresh(ctx, sess)
}

// Decrease lowers the quantity of productID by by. Reaching zero removes the
// item on both the primary and the fallback path.
func (s *cartService) Decrease(ctx context.Context, sess *session.Session, productID int64, by int) (*model.Cart, error) {
	if by < 1 {
		return nil, model.ErrInvalidQuantity
	}

	err := s.backend.DecreaseCartItem(ctx, sess.Token, productID, by)
	if err != nil && s.canFallback(ctx, err) {
		s.noteFallback(opDecrease, productID, err)
		err = s.decreaseBySet(ctx, sess, productID, by)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", productID).Int("decrease_by", by).Msg("cart decrease failed")
		return nil, s.guard.Check(ctx, sess, err)
	}

	return s.refresh(ctx, sess)
}

// Remove deletes productID from the cart.
func (s *cartService) Remove(ctx context.Context, sess *session.Session, productID int64) (*model.Cart, error) {
	err := s.backend.RemoveCartItem(ctx, sess.Token, productID)
	if err != nil && s.canFallback(ctx, err) {
		s.noteFallback(opRemove, productID, err)
		err = s.backend.UpdateCartItem(ctx, sess.Token, productID, 0)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", productID).Msg("cart remove failed")
		return nil, s.guard.Check(ctx, sess, err)
	}

	return s.refresh(ctx, sess)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, sess *session.Session) (*model.Cart, error) {
	err := s.backend.ClearCart(ctx, sess.Token)
	if err != nil && s.canFallback(ctx, err) {
		s.noteFallback(opClear, 0, err)
		err = s.removeEach(ctx, sess)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("cart clear failed")
		return nil, s.guard.Check(ctx, sess, err)
	}

	return s.refresh(ctx, sess)
}

// setByDifference reaches quantity through the incremental endpoints: add for
// a positive difference, decrease for a negative one.
func (s *cartService) setByDifference(ctx context.Context, sess *session.Session, productID int64, quantity int) error {
	cart, err := s.backend.GetCart(ctx, sess.Token)
	if err != nil {
		return err
	}

	current := 0
	if item, ok := cart.Find(productID); ok {
		current = item.Quantity
	}

	switch diff := quantity - current; {
	case diff > 0:
		return s.backend.AddToCart(ctx, sess.Token, productID, diff)
	case diff < 0:
		return s.backend.DecreaseCartItem(ctx, sess.Token, productID, -diff)
	default:
		return nil
	}
}

func (s *cartService) decreaseBySet(ctx context.Context, sess *session.Session, productID int64, by int) error {
	cart, err := s.backend.GetCart(ctx, sess.Token)
	if err != nil {
		return err
	}

	item, ok := cart.Find(productID)
	if !ok {
		return model.ErrItemNotInCart
	}

	remaining := item.Quantity - by
	if remaining <= 0 {
		return s.backend.RemoveCartItem(ctx, sess.Token, productID)
	}
	return s.backend.UpdateCartItem(ctx, sess.Token, productID, remaining)
}

func (s *cartService) removeEach(ctx context.Context, sess *session.Session) error {
	cart, err := s.backend.GetCart(ctx, sess.Token)
	if err != nil {
		return err
	}

	for _, item := range cart.Items {
		if err := s.backend.RemoveCartItem(ctx, sess.Token, item.ProductID); err != nil {
			return err
		}
	}
	return nil
}

// canFallback reports whether a failed primary call may be retried once
// against the alternative endpoint shape.
func (s *cartService) canFallback(ctx context.Context, err error) bool {
	if s.contract != config.ContractLegacy || ctx.Err() != nil {
		return false
	}
	return errors.Is(err, backend.ErrRequestFailed) || errors.Is(err, backend.ErrNotFound)
}

func (s *cartService) noteFallback(op string, productID int64, err error) {
	s.metrics.CartFallback(op)
	s.logger.Info().
		Err(err).
		Str("operation", op).
		Int64("product_id", productID).
		Msg("primary cart endpoint failed, using fallback")
}

// refresh re-reads the cart after a mutation, never joining a fetch that
// started before the mutation completed.
func (s *cartService) refresh(ctx context.Context, sess *session.Session) (*model.Cart, error) {
	s.fetches.Forget(sess.ID.String())
	return s.FetchCart(ctx, sess)
}

func (s *cartService) fetch(ctx context.Context, sess *session.Session) (*model.Cart, error) {
	ch := s.fetches.DoChan(sess.ID.String(), func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return s.backend.GetCart(shared, sess.Token)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	v := res.Val

	shared, _ := v.(*model.Cart)
	if shared == nil {
		return model.NewCart(nil), nil
	}
	cart := &model.Cart{
		Items:    append([]model.CartItem(nil), shared.Items...),
		Subtotal: shared.Subtotal,
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return cart, nil
}
