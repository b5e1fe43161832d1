package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrKeyAlreadyClaimed = errors.New("idempotency key already claimed")

// Connect dials redis and verifies the connection before handing the client
// out. The guard is the only redis consumer, so the pool stays small.
func Connect(addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		Username:        username,
		Password:        password,
		DialTimeout:     3 * time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		PoolSize:        4,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return rdb, nil
}

// Guard claims client-supplied idempotency keys so that a retried booking
// request is rejected instead of creating a second appointment. It does not
// serialize distinct bookings; conflicting writes are settled by the database.
type Guard interface {
	Claim(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

type redisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) Guard {
	return &redisGuard{
		client: client,
		ttl:    ttl,
	}
}

func (g *redisGuard) Claim(ctx context.Context, key string) error {
	ok, err := g.client.SetNX(ctx, g.redisKey(key), "1", g.ttl).Result()
	if err != nil {
		return fmt.Errorf("claim idempotency key: %w", err)
	}
	if !ok {
		return ErrKeyAlreadyClaimed
	}
	return nil
}

// Release frees a claimed key so the client may retry after a failed write.
func (g *redisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.redisKey(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (g *redisGuard) redisKey(key string) string {
	return "idem:booking:" + key
}
