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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const maxUpdateAttempts = 5

// compareAndDelete deletes KEYS[1] if its stored token equals ARGV[1].
var compareAndDelete = redis.NewScript(`
local data = redis.call("GET", KEYS[1])
if not data then
	return 0
end
local s = cjson.decode(data)
if s["token"] == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionCache implements session.Store on Redis. Each session is one JSON
// value whose key expires together with the session.
type SessionCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewSessionCache creates a Redis-backed session store.
func NewSessionCache(client *redis.Client, logger zerolog.Logger) *SessionCache {
	return &SessionCache{
		client: client,
		logger: logger.With().Str("repository", "session-cache").Logger(),
	}
}

var _ session.Store = (*SessionCache)(nil)

func (c *SessionCache) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return c.get(ctx, c.client, id)
}

func (c *SessionCache) Put(ctx context.Context, s *session.Session) error {
	return c.set(ctx, c.client, s)
}

// Update applies fn under an optimistic WATCH on the session key and retries
// when a concurrent writer wins.
func (c *SessionCache) Update(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	key := sessionKey(id)

	var result *session.Session
	txf := func(tx *redis.Tx) error {
		s, err := c.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := fn(s); err != nil {
			return err
		}
		s.ID = id
		s.UpdatedAt = time.Now().UTC()

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return c.set(ctx, pipe, s)
		})
		if err != nil {
			return err
		}

		result = s
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := c.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	c.logger.Warn().Str("session_id", id.String()).Msg("session update lost every optimistic retry")
	return nil, fmt.Errorf("session update conflict after %d attempts", maxUpdateAttempts)
}

func (c *SessionCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *SessionCache) CompareAndDelete(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, c.client, []string{sessionKey(id)}, token).Int()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete failed: %w", err)
	}
	return n == 1, nil
}

func (c *SessionCache) get(ctx context.Context, cmd redis.Cmdable, id uuid.UUID) (*session.Session, error) {
	data, err := cmd.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}

	if s.Expired(time.Now()) {
		return nil, model.ErrSessionNotFound
	}
	return &s, nil
}

func (c *SessionCache) set(ctx context.Context, cmd redis.Cmdable, s *session.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return cmd.Del(ctx, sessionKey(s.ID)).Err()
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}

	if err := cmd.Set(ctx, sessionKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("session:%s", id)
}
