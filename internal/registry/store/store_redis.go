package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"givechain/internal/registry/models"
	"givechain/pkg/domain"
	"givechain/pkg/platform/sentinel"
)

// RedisCache fronts the hot per-donor reads (cumulative totals and the
// invoice-token index) with Redis. It is a cache, never the source of truth:
// the registry service invalidates on write and falls through on miss.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func totalKey(donor domain.Address) string {
	return "registry:total:" + donor.String()
}

func invoiceKey(donor domain.Address) string {
	return "registry:invoice:" + donor.String()
}

func (c *RedisCache) GetTotal(ctx context.Context, donor domain.Address) (*big.Int, error) {
	raw, err := c.client.Get(ctx, totalKey(donor)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get cached total: %w", err)
	}
	total, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("malformed cached total %q", raw)
	}
	return total, nil
}

func (c *RedisCache) SetTotal(ctx context.Context, donor domain.Address, total *big.Int) error {
	return c.client.Set(ctx, totalKey(donor), total.String(), c.ttl).Err()
}

func (c *RedisCache) InvalidateTotal(ctx context.Context, donor domain.Address) error {
	return c.client.Del(ctx, totalKey(donor)).Err()
}

func (c *RedisCache) GetInvoiceToken(ctx context.Context, donor domain.Address) (models.TokenID, error) {
	raw, err := c.client.Get(ctx, invoiceKey(donor)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("get cached invoice token: %w", err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed cached invoice token %q", raw)
	}
	return models.TokenID(id), nil
}

func (c *RedisCache) SetInvoiceToken(ctx context.Context, donor domain.Address, id models.TokenID) error {
	return c.client.Set(ctx, invoiceKey(donor), strconv.FormatUint(id, 10), c.ttl).Err()
}

func (c *RedisCache) InvalidateInvoiceToken(ctx context.Context, donor domain.Address) error {
	return c.client.Del(ctx, invoiceKey(donor)).Err()
}
