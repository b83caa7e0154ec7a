package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

var _ Cache = (*Redis)(nil)

type RedisConfig struct {
	// URL is a redis connection url, E.g. `redis://:password@localhost:6379/0`
	URL string `mapstructure:"url"`

	// Prefix is prepended to every key. Default is `ticket-integrity:`
	Prefix string `mapstructure:"prefix"`
}

const defaultRedisPrefix = "ticket-integrity:"

type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redis and checks the connection.
func NewRedis(ctx context.Context, conf RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(conf.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "can't connect to redis")
	}
	return NewRedisWithClient(client, conf.Prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, errors.Wrapf(err, "redis get %q", key)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %q", key)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefix + key
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

func (r *Redis) Close() error {
	return errors.WithStack(r.client.Close())
}
