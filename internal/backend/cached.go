package backend

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/cache"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
)

// SettingsFetcher is the raw settings source the cached decorator wraps.
type SettingsFetcher interface {
	Settings(ctx context.Context) (domain.StoreSettings, error)
}

// CachedSettings is a cache-aside decorator over the settings fetch.
// Sessions starting at the same instant collapse into one upstream call.
type CachedSettings struct {
	fetcher SettingsFetcher
	cache   cache.SettingsCache
	sfg     singleflight.Group
}

func NewCachedSettings(fetcher SettingsFetcher, c cache.SettingsCache) *CachedSettings {
	return &CachedSettings{fetcher: fetcher, cache: c}
}

func (c *CachedSettings) Settings(ctx context.Context) (domain.StoreSettings, error) {
	v, err, _ := c.sfg.Do("settings", func() (interface{}, error) {
		cached, err := c.cache.Get(ctx)
		if err == nil {
			return *cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("settings cache get error: %v", err) // log cache error but continue
		}

		settings, err := c.fetcher.Settings(ctx)
		if err != nil {
			return domain.StoreSettings{}, err
		}

		go func() {
			if err := c.cache.Set(context.Background(), &settings); err != nil {
				log.Printf("settings cache set error: %v", err)
			}
		}()

		return settings, nil
	})
	if err != nil {
		return domain.StoreSettings{}, err
	}
	return v.(domain.StoreSettings), nil
}

// Refresh drops the cached copy and refetches. Only an explicit user
// refresh invalidates settings mid-session.
func (c *CachedSettings) Refresh(ctx context.Context) (domain.StoreSettings, error) {
	if err := c.cache.Delete(ctx); err != nil {
		log.Printf("settings cache delete error: %v", err)
	}
	return c.Settings(ctx)
}
