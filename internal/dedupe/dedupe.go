// Package dedupe records idempotency keys so a retried request is answered with the
// first response instead of being executed twice.
package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is implemented by Redis and Nop.
type Store interface {
	// Claim records key as in progress. It returns false when the key already exists.
	Claim(ctx context.Context, scope, key string) (bool, error)
	// Complete stores the response for a claimed key.
	Complete(ctx context.Context, scope, key string, response []byte) error
	// Lookup returns the stored response; done is false while the key is still in
	// progress or unknown.
	Lookup(ctx context.Context, scope, key string) (response []byte, done bool, err error)
	// Release forgets key so the request may be retried.
	Release(ctx context.Context, scope, key string) error
}

const pending = "\x00pending"

// Redis keeps keys for ttl. All server instances sharing the Redis database see the
// same keys.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, prefix: "kanban:idem"}
}

func (r *Redis) key(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, scope, key)
}

func (r *Redis) Claim(ctx context.Context, scope, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(scope, key), pending, r.ttl).Result()
}

func (r *Redis) Complete(ctx context.Context, scope, key string, response []byte) error {
	return r.client.Set(ctx, r.key(scope, key), response, r.ttl).Err()
}

func (r *Redis) Lookup(ctx context.Context, scope, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.key(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(v) == pending {
		return nil, false, nil
	}
	return v, true, nil
}

func (r *Redis) Release(ctx context.Context, scope, key string) error {
	return r.client.Del(ctx, r.key(scope, key)).Err()
}

// Nop accepts every key and remembers nothing.
type Nop struct{}

func (Nop) Claim(context.Context, string, string) (bool, error)          { return true, nil }
func (Nop) Complete(context.Context, string, string, []byte) error       { return nil }
func (Nop) Lookup(context.Context, string, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Release(context.Context, string, string) error                { return nil }

// Open connects to a redis:// URL and checks the connection.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
