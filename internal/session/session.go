// Package session keeps the per-client credential state of the gateway.
//
// A session holds the opaque bearer token issued by the backend together with
// the user identity and the admin flag. Stores guarantee atomic
// read-modify-write through Update and token-checked invalidation through
// CompareAndDelete.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront/internal/model"
)

// HeaderName is the request header carrying the session ID.
const HeaderName = "X-Session-ID"

// Session is the gateway's record of an authenticated client.
type Session struct {
	ID        uuid.UUID   `json:"id"`
	Token     string      `json:"token"`
	UserID    int64       `json:"user_id"`
	Role      string      `json:"role"`
	IsAdmin   bool        `json:"is_admin"`
	Profile   *model.User `json:"profile,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	if s.Profile != nil {
		profile := *s.Profile
		c.Profile = &profile
	}
	return &c
}

// Store persists sessions. Get returns model.ErrSessionNotFound for unknown
// or expired sessions.
type Store interface {
	// Get returns the session with the given ID.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// Put creates or replaces a session.
	Put(ctx context.Context, s *Session) error

	// Update applies fn to the stored session atomically and persists the
	// result. If fn returns an error nothing is written.
	Update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// CompareAndDelete removes the session only if its token still equals
	// token. It reports whether a session was removed.
	CompareAndDelete(ctx context.Context, id uuid.UUID, token string) (bool, error)
}
