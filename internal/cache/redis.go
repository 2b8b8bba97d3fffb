package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis is the shared-backend Store, used when more than one process
// serves traffic. Failures degrade to cache misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(cfg RedisConfig, ttl time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()

	if err != nil {
		return nil, false
	}

	return val, true
}

func (c *Redis) Set(ctx context.Context, key string, val []byte) {
	_ = c.client.Set(ctx, key, val, c.ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	_ = c.client.Del(ctx, keys...).Err()
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}
