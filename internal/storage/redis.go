package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"gstinvoice/internal/logger"
)

const (
	lockTTL   = 15 * time.Second
	lockWait  = 5 * time.Second
	lockRetry = 25 * time.Millisecond
)

// Redis stores every key as a plain string value. Writers on different
// machines serialize through Lock.
type Redis struct {
	client *redis.Client
	locker *redislock.Client
	prefix string
	log    zerolog.Logger
}

// OpenRedis connects to addr and verifies the connection with a ping.
func OpenRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	const op = "OpenRedis"

	if addr == "" {
		return nil, fmt.Errorf("%s: redis address is required", op)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, addr, err)
	}

	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		locker: redislock.New(client),
		prefix: prefix,
		log:    logger.WithComponent("storage-redis"),
	}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}

	r.log.Debug().Str("key", r.key(key)).Int("bytes", len(value)).Msg("Value stored")
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Lock obtains a short-lived redis lock on key, retrying until it is free,
// lockWait passes or ctx ends.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	lockKey := r.key("lock:" + key)
	lock, err := r.locker.Obtain(lockCtx, lockKey, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetry),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrLocked, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: lock %s: %w", key, err)
	}

	r.log.Debug().Str("lock", lockKey).Msg("Lock obtained")

	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.log.Warn().Err(err).Str("lock", lockKey).Msg("Failed to release lock")
		}
	}, nil
}
