package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

const (
	settingsKey = "storefront:settings"
	pricesKey   = "storefront:ingredient-prices"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context) (*domain.StoreSettings, error) {
	data, err := r.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var settings domain.StoreSettings
	if err2 := json.Unmarshal(data, &settings); err2 != nil {
		return nil, fmt.Errorf("unmarshal settings failed: %w", err2)
	}
	return &settings, nil
}

func (r *RedisCache) Set(ctx context.Context, settings *domain.StoreSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings failed: %w", err)
	}
	if err := r.client.Set(ctx, settingsKey, string(data), r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, settingsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) GetPrices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	data, err := r.client.Get(ctx, pricesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var prices map[int64]decimal.Decimal
	if err2 := json.Unmarshal(data, &prices); err2 != nil {
		return nil, fmt.Errorf("unmarshal prices failed: %w", err2)
	}
	return prices, nil
}

func (r *RedisCache) SetPrices(ctx context.Context, prices map[int64]decimal.Decimal) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("marshal prices failed: %w", err)
	}
	if err := r.client.Set(ctx, pricesKey, string(data), r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// ttl adds jitter so concurrently warmed keys do not all expire together.
func (r *RedisCache) ttl() time.Duration {
	return r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
}
