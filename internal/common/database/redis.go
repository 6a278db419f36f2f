package database

import (
	"context"
	"fmt"

	"legalaid-seeder/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection pool behind the code registry. Only the
// set commands the registry needs are exposed.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis does not dial; the first command or Ping opens a connection.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	timeout := config.GetDuration(cfg.Timeout)
	return &RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     cfg.PoolSize,
	})}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.Client.Options().Addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// SetAdd is a no-op for an empty member list; SADD rejects it.
func (c *RedisClient) SetAdd(ctx context.Context, key string, members ...interface{}) error {
	if len(members) == 0 {
		return nil
	}
	return c.Client.SAdd(ctx, key, members...).Err()
}

func (c *RedisClient) SetMembers(ctx context.Context, key string) ([]string, error) {
	return c.Client.SMembers(ctx, key).Result()
}

func (c *RedisClient) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}
