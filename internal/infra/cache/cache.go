// Package cache provides the Redis-backed TTL caches described in SPEC_FULL.md
// §6: transient QR/pairing payloads, and domain caches (templates, settings,
// contacts, subscription) invalidated explicitly on write.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the narrow surface the rest of the fleet depends on.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RedisCache implements Cache against a single redis.Client.
type RedisCache struct {
	client *redis.Client
}

// New connects to Redis using a redis:// URL.
func New(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse cache url: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Close() error { return c.client.Close() }

// Key namespacing, per SPEC_FULL.md §6.
func KeyQR(deviceID string) string            { return "qr:" + deviceID }
func KeyPairing(deviceID string) string       { return "pairing:" + deviceID }
func KeyTemplate(user, id string) string      { return fmt.Sprintf("template:%s:%s", user, id) }
func KeyTemplatesAll(user string) string      { return "templates:" + user + ":all" }
func KeySettings(user string) string          { return "settings:" + user }
func KeyContactsList(user string) string      { return "contacts:" + user + ":list" }
func KeyContact(user, phone string) string    { return fmt.Sprintf("contact:%s:%s", user, phone) }
func KeySubscription(user string) string      { return "subscription:" + user }
