package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect builds a client from either a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client

	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}

		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// client is the subset of *redis.Client the view cache needs.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis stores views in Redis with a TTL, so a missed invalidation heals on
// its own.
type Redis struct {
	client client
	ttl    time.Duration
}

var _ Views = (*Redis)(nil)

func NewRedis(c client, ttl time.Duration) *Redis {
	return &Redis{client: c, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, path string) ([]byte, error) {
	body, err := r.client.Get(ctx, key(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}

		return nil, fmt.Errorf("getting view %s: %w", path, err)
	}

	return body, nil
}

func (r *Redis) Set(ctx context.Context, path string, body []byte) error {
	if err := r.client.Set(ctx, key(path), body, r.ttl).Err(); err != nil {
		return fmt.Errorf("setting view %s: %w", path, err)
	}

	return nil
}

func (r *Redis) Invalidate(ctx context.Context, path string) error {
	if err := r.client.Del(ctx, key(path)).Err(); err != nil {
		return fmt.Errorf("invalidating view %s: %w", path, err)
	}

	return nil
}
