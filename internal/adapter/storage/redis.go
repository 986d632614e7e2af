package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
	"github.com/niksmo/onboarding/pkg/retry"
	"github.com/redis/go-redis/v9"
)

var _ port.DraftStorage = (*RedisStorage)(nil)

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStorage keeps the draft document under a single key without expiry.
type RedisStorage struct {
	cl  redisClient
	key string
}

func NewRedisStorage(cl redisClient, key string) RedisStorage {
	return RedisStorage{cl, key}
}

// NewRedisClient connects to addr and waits until the server answers.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	const op = "NewRedisClient"
	log := slog.With("op", op)

	cl := redis.NewClient(&redis.Options{Addr: addr})

	err := retry.Do(ctx, startupRetry(), func() error {
		return cl.Ping(ctx).Err()
	})
	if err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}

	log.Info("redis is available", "addr", addr)
	return cl, nil
}

func (s RedisStorage) Read(ctx context.Context) ([]byte, error) {
	const op = "RedisStorage.Read"

	data, err := s.cl.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrDraftNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s RedisStorage) Write(ctx context.Context, data []byte) error {
	const op = "RedisStorage.Write"

	if err := s.cl.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s RedisStorage) Delete(ctx context.Context) error {
	const op = "RedisStorage.Delete"

	n, err := s.cl.Del(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrDraftNotFound)
	}
	return nil
}
