package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/redis/go-redis/v9"
)

// RedisPDFCache implements PDFCache using Redis so rendered PDFs are shared
// between instances
type RedisPDFCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisPDFCache connects to Redis and returns the cache
func NewRedisPDFCache(cfg RedisConfig) (*RedisPDFCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPDFCacheWithClient(client, "", cfg.TTL), nil
}

// NewRedisPDFCacheWithClient creates a cache with an existing Redis client
func NewRedisPDFCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisPDFCache {
	if keyPrefix == "" {
		keyPrefix = "invoicing:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPDFCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get returns a cached PDF. A missing key is a miss, not an error.
func (c *RedisPDFCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached PDF: %w", err)
	}
	return data, true, nil
}

// Set stores a PDF with the configured TTL
func (c *RedisPDFCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache PDF: %w", err)
	}
	return nil
}

// Client exposes the connection so other stores can share it
func (c *RedisPDFCache) Client() *redis.Client {
	return c.client
}

// Ping checks the Redis connection
func (c *RedisPDFCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisPDFCache) Close() error {
	return c.client.Close()
}

// Ensure RedisPDFCache implements PDFCache
var _ appinv.PDFCache = (*RedisPDFCache)(nil)
