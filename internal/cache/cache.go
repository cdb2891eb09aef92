package cache

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// SettingsCache holds the public storefront settings fetched at session
// start. Read-mostly: refreshed at session start or by explicit user
// refresh, never invalidated mid-checkout.
type SettingsCache interface {
	Get(ctx context.Context) (*domain.StoreSettings, error)
	Set(ctx context.Context, settings *domain.StoreSettings) error
	Delete(ctx context.Context) error
}

// PriceCache maps ingredient ids to unit prices for extras and
// modifications whose price the cart payload did not carry.
type PriceCache interface {
	GetPrices(ctx context.Context) (map[int64]decimal.Decimal, error)
	SetPrices(ctx context.Context, prices map[int64]decimal.Decimal) error
}

var ErrCacheMiss = errors.New("cache miss")
