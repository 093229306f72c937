package cache

import (
	"fmt"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"go.uber.org/zap"
)

// PDFCacheFactory creates PDF caches based on configuration
type PDFCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// PDFCacheFactoryOption is a functional option for configuring the factory
type PDFCacheFactoryOption func(*PDFCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PDFCacheFactoryOption {
	return func(f *PDFCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) PDFCacheFactoryOption {
	return func(f *PDFCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewPDFCacheFactory creates a new factory
func NewPDFCacheFactory(cfg config.RedisConfig, opts ...PDFCacheFactoryOption) *PDFCacheFactory {
	f := &PDFCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-based PDF cache
func (f *PDFCacheFactory) CreateRedisCache() (*RedisPDFCache, error) {
	c, err := NewRedisPDFCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
		TTL:      f.redisConfig.PDFTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis PDF cache: %w", err)
	}
	return c, nil
}

// CreateCache uses Redis when a host is configured and reachable. Without a
// host it returns the in-memory cache; an unreachable Redis falls back to it
// only when fallback is allowed.
func (f *PDFCacheFactory) CreateCache() (appinv.PDFCache, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory PDF cache")
		return NewInMemoryPDFCache(f.redisConfig.PDFTTL, 0), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis PDF cache")
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory PDF cache", zap.Error(err))
	return NewInMemoryPDFCache(f.redisConfig.PDFTTL, 0), nil
}
