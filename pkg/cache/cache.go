// Package cache provides a small key/value cache with per-entry TTL.
// Backends are in-memory (single process) and Redis (shared between replicas).
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"

	DefaultTTL = 15 * time.Second
)

type Config struct {
	// Driver is the cache backend. Possible values: memory (default), redis, none
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
	Redis  RedisConfig   `mapstructure:"redis"`
}

// New creates the cache backend selected by conf. It returns a nil Cache for driver `none`.
func New(ctx context.Context, conf Config) (Cache, error) {
	switch strings.ToLower(conf.Driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		c, err := NewRedis(ctx, conf.Redis)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return c, nil
	case DriverNone:
		return nil, nil
	default:
		return nil, errors.Wrapf(errs.Unsupported, "cache driver %q is not supported", conf.Driver)
	}
}
