package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storefront/internal/model"
)

// EndFunc is notified when a session ends through logout or invalidation.
type EndFunc func(id uuid.UUID)

// Manager creates, resolves and ends sessions on top of a Store.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	onEnded []EndFunc
}

// NewManager creates a session manager. Sessions live for at most ttl, or
// until the token's own expiry when it is earlier.
func NewManager(store Store, ttl time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("service", "session").Logger(),
		now:    time.Now,
	}
}

// OnEnd registers fn to run after a session is logged out or invalidated.
func (m *Manager) OnEnd(fn EndFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnded = append(m.onEnded, fn)
}

// Create stores a new session for a freshly issued token.
func (m *Manager) Create(ctx context.Context, token string, user model.User) (*Session, error) {
	if token == "" {
		return nil, errors.New("cannot create session without token")
	}

	now := m.now().UTC()
	s := &Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if claims, ok := ParseClaims(token); ok {
		if s.UserID == 0 {
			s.UserID = claims.UserID
		}
		if s.Role == "" {
			s.Role = claims.Role
		}
		if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.After(now) && claims.ExpiresAt.Before(s.ExpiresAt) {
			s.ExpiresAt = claims.ExpiresAt
		}
	}
	s.IsAdmin = s.Role == model.RoleAdmin

	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	m.logger.Info().
		Str("session_id", s.ID.String()).
		Int64("user_id", s.UserID).
		Bool("admin", s.IsAdmin).
		Time("expires_at", s.ExpiresAt).
		Msg("session created")

	return s, nil
}

// Resolve returns the live session for a raw session ID.
func (m *Manager) Resolve(ctx context.Context, rawID string) (*Session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, model.ErrSessionNotFound
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CacheProfile replaces the cached user profile of a session.
func (m *Manager) CacheProfile(ctx context.Context, id uuid.UUID, user model.User) (*Session, error) {
	return m.store.Update(ctx, id, func(s *Session) error {
		profile := user
		s.Profile = &profile
		return nil
	})
}

// Logout deletes the session unconditionally. Calls already in flight keep
// the token they captured; every later call fails authentication.
func (m *Manager) Logout(ctx context.Context, id uuid.UUID) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	m.logger.Info().Str("session_id", id.String()).Msg("session logged out")
	m.notify(id)
	return nil
}

// Invalidate ends s after the backend rejected its token. The stored session
// is removed only if it still carries the rejected token, so a concurrent
// re-login is never clobbered.
func (m *Manager) Invalidate(ctx context.Context, s *Session) error {
	removed, err := m.store.CompareAndDelete(ctx, s.ID, s.Token)
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	if !removed {
		m.logger.Debug().Str("session_id", s.ID.String()).Msg("session already replaced or removed")
		return nil
	}

	m.logger.Info().Str("session_id", s.ID.String()).Msg("session invalidated by backend")
	m.notify(s.ID)
	return nil
}

func (m *Manager) notify(id uuid.UUID) {
	m.mu.RLock()
	listeners := append([]EndFunc(nil), m.onEnded...)
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(id)
	}
}
