package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ansdns/internal/records/models"
	"ansdns/pkg/platform/sentinel"
)

// DefaultRedisKey holds the state document when no key is configured.
const DefaultRedisKey = "ansdns:state"

// RedisStore keeps the state document under one Redis key, shared by every
// server instance. Update is an optimistic WATCH/MULTI commit: a concurrent
// writer from another instance makes it fail with sentinel.ErrConflict.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKey overrides DefaultRedisKey.
func WithRedisKey(key string) RedisStoreOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewRedisStore constructs a Redis-backed state store. The client lifecycle
// is managed by the caller.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, key: DefaultRedisKey}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Load(ctx context.Context) (*models.ContractState, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load state: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w: %w", sentinel.ErrUnavailable, err)
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, state *models.ContractState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save state: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, fn func(*models.ContractState) (*models.ContractState, error)) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("update state: %w", sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update state: %w: %w", sentinel.ErrUnavailable, err)
		}
		current, err := decode(data)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		encoded, err := encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, encoded, 0)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, s.key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("update state: %w", sentinel.ErrConflict)
	}
	return err
}
