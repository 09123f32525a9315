package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	backend CatalogBackend
	guard   *SessionGuard
	logger  zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalogBackend CatalogBackend, guard *SessionGuard, logger zerolog.Logger) CatalogService {
	return &catalogService{
		backend: catalogBackend,
		guard:   guard,
		logger:  logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) Products(ctx context.Context) ([]model.Product, error) {
	return s.backend.Products(ctx)
}

func (s *catalogService) Product(ctx context.Context, id int64) (*model.Product, error) {
	return s.backend.Product(ctx, id)
}

func (s *catalogService) Orders(ctx context.Context, sess *session.Session) ([]model.Order, error) {
	orders, err := s.backend.Orders(ctx, sess.Token)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", sess.UserID).Msg("failed to fetch order history")
		return nil, s.guard.Check(ctx, sess, err)
	}
	return orders, nil
}
