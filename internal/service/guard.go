package service

import (
	"context"
	"errors"

	"storefront/internal/backend"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sessions is the slice of session.Manager the services depend on.
type Sessions interface {
	Create(ctx context.Context, token string, user model.User) (*session.Session, error)
	CacheProfile(ctx context.Context, id uuid.UUID, user model.User) (*session.Session, error)
	Logout(ctx context.Context, id uuid.UUID) error
	Invalidate(ctx context.Context, s *session.Session) error
}

// SessionGuard ends a session once the backend rejects its token.
type SessionGuard struct {
	sessions Sessions
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewSessionGuard creates a guard over sessions. m may be nil.
func NewSessionGuard(sessions Sessions, m *metrics.Metrics, logger zerolog.Logger) *SessionGuard {
	return &SessionGuard{
		sessions: sessions,
		metrics:  m,
		logger:   logger.With().Str("component", "session-guard").Logger(),
	}
}

// Check passes err through unchanged. When err is a backend authentication
// failure for a credential the session actually sent, the session is
// invalidated first.
func (g *SessionGuard) Check(ctx context.Context, s *session.Session, err error) error {
	if err == nil || g == nil || s == nil || s.Token == "" {
		return err
	}
	if !errors.Is(err, backend.ErrUnauthenticated) {
		return err
	}

	if invErr := g.sessions.Invalidate(context.WithoutCancel(ctx), s); invErr != nil {
		g.logger.Error().
			Err(invErr).
			Str("session_id", s.ID.String()).
			Msg("failed to invalidate rejected session")
		return err
	}

	g.metrics.SessionInvalidated()
	return err
}
