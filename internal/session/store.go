// Package session persists wizard sessions in Redis between requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/wizard"
)

// Store loads and saves wizard sessions.
type Store interface {
	Create(ctx context.Context, now time.Time) (*wizard.Session, error)
	Get(ctx context.Context, id string) (*wizard.Session, error)
	Save(ctx context.Context, s *wizard.Session) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each session as a JSON value with a sliding TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisStore creates a store; every Save refreshes the key's TTL.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Create starts a new session and persists it.
func (s *RedisStore) Create(ctx context.Context, now time.Time) (*wizard.Session, error) {
	sess := wizard.NewSession(uuid.New().String(), now)
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Debug("session created", map[string]interface{}{"sessionId": sess.ID})
	return sess, nil
}

// Get loads a session. A missing or expired key yields SESSION_NOT_FOUND.
func (s *RedisStore) Get(ctx context.Context, id string) (*wizard.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError("get", err)
	}

	var sess wizard.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("discarding unreadable session", map[string]interface{}{
			"sessionId": id,
			"error":     err,
		})
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *wizard.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError("set", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError("del", err)
	}
	return nil
}
