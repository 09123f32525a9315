package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const sessionColumns = `id, token, user_id, role, is_admin, profile, expires_at, created_at, updated_at`

// SessionRepository implements session.Store using PostgreSQL.
type SessionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSessionRepository creates a PostgreSQL-backed session store.
func NewSessionRepository(pool *pgxpool.Pool, logger zerolog.Logger) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "session").Logger(),
	}
}

var _ session.Store = (*SessionRepository)(nil)

// Get retrieves a live session by ID.
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND expires_at > NOW()`

	s, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to query session")
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return s, nil
}

// Put inserts or replaces a session.
func (r *SessionRepository) Put(ctx context.Context, s *session.Session) error {
	profile, err := marshalProfile(s.Profile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			role = EXCLUDED.role,
			is_admin = EXCLUDED.is_admin,
			profile = EXCLUDED.profile,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID, s.Token, s.UserID, s.Role, s.IsAdmin, profile,
		s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", s.ID.String()).Msg("failed to store session")
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Debug().Str("session_id", s.ID.String()).Msg("session stored")
	return nil
}

// Update locks the session row, applies fn and writes the result in one
// transaction.
func (r *SessionRepository) Update(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND expires_at > NOW() FOR UPDATE`

	s, err := scanSession(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}

	if err := fn(s); err != nil {
		return nil, err
	}
	s.ID = id
	s.UpdatedAt = time.Now().UTC()

	profile, err := marshalProfile(s.Profile)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE sessions
		SET token = $2, user_id = $3, role = $4, is_admin = $5, profile = $6,
			expires_at = $7, updated_at = $8
		WHERE id = $1
	`, s.ID, s.Token, s.UserID, s.Role, s.IsAdmin, profile, s.ExpiresAt, s.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to update session")
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit session update: %w", err)
	}

	return s, nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CompareAndDelete removes the session only while it still holds token.
func (r *SessionRepository) CompareAndDelete(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1 AND token = $2`, id, token)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to invalidate session")
		return false, fmt.Errorf("failed to invalidate session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// PurgeExpired deletes every expired session and returns how many were removed.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		r.logger.Info().Int64("count", n).Msg("expired sessions purged")
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		s       session.Session
		profile []byte
	)

	err := row.Scan(
		&s.ID,
		&s.Token,
		&s.UserID,
		&s.Role,
		&s.IsAdmin,
		&profile,
		&s.ExpiresAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(profile) > 0 {
		var user model.User
		if err := json.Unmarshal(profile, &user); err != nil {
			return nil, fmt.Errorf("failed to decode session profile: %w", err)
		}
		s.Profile = &user
	}

	return &s, nil
}

func marshalProfile(user *model.User) ([]byte, error) {
	if user == nil {
		return nil, nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session profile: %w", err)
	}
	return data, nil
}
