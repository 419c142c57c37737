package symbols

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCache shares validation decisions between server replicas using two sets.
// Redis errors are logged and read as cache misses.
type RedisCache struct {
	client     *redis.Client
	validKey   string
	invalidKey string
	log        zerolog.Logger
}

func NewRedisCache(client *redis.Client, prefix string, log zerolog.Logger) *RedisCache {
	return &RedisCache{
		client:     client,
		validKey:   prefix + ":valid",
		invalidKey: prefix + ":invalid",
		log:        log,
	}
}

func (c *RedisCache) IsValid(ctx context.Context, symbol string) bool {
	return c.isMember(ctx, c.validKey, symbol)
}

func (c *RedisCache) IsInvalid(ctx context.Context, symbol string) bool {
	return c.isMember(ctx, c.invalidKey, symbol)
}

func (c *RedisCache) MarkValid(ctx context.Context, symbol string) {
	c.move(ctx, c.invalidKey, c.validKey, symbol)
}

func (c *RedisCache) MarkInvalid(ctx context.Context, symbol string) {
	c.move(ctx, c.validKey, c.invalidKey, symbol)
}

func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.validKey, c.invalidKey).Err(); err != nil {
		return fmt.Errorf("failed to clear symbol cache: %w", err)
	}
	c.log.Info().Msg("Symbol cache cleared")
	return nil
}

func (c *RedisCache) isMember(ctx context.Context, key, symbol string) bool {
	ok, err := c.client.SIsMember(ctx, key, symbol).Result()
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Symbol cache lookup failed")
		return false
	}
	return ok
}

func (c *RedisCache) move(ctx context.Context, from, to, symbol string) {
	pipe := c.client.TxPipeline()
	pipe.SRem(ctx, from, symbol)
	pipe.SAdd(ctx, to, symbol)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Symbol cache update failed")
	}
}
