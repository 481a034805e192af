package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a shared load that no longer follows any caller's context
const loadTimeout = 30 * time.Second

// MenuCache stores rendered public menus per shop. Every key belongs to one
// shop so deletes and edits can drop exactly the affected menus.
type MenuCache struct {
	enabled bool
	logger  *zap.Logger
	layers  *MultiLayerCache
	group   singleflight.Group
}

// NewMenuCache builds the cache. A nil client keeps it in memory only; a
// disabled cache loads every request.
func NewMenuCache(cfg config.CacheConfig, client redis.Cmdable, logger *zap.Logger) *MenuCache {
	return &MenuCache{
		enabled: cfg.Enabled,
		logger:  logger.Named("cache.menu"),
		layers: NewMultiLayerCache(MultiLayerCacheConfig{
			RedisClient: client,
			KeyPrefix:   cfg.Redis.Prefix,
			L1TTL:       cfg.L1TTL,
			L2TTL:       cfg.L2TTL,
			MaxL1Size:   cfg.MaxL1Size,
		}, logger),
	}
}

// Layers exposes the underlying cache for stats and cleanup
func (m *MenuCache) Layers() *MultiLayerCache {
	return m.layers
}

func shopPrefix(shopID uint) string {
	return fmt.Sprintf("shop:%d:", shopID)
}

// Key builds the cache key of one menu variant of a shop
func Key(shopID uint, variant string) string {
	return shopPrefix(shopID) + variant
}

// GetOrLoad returns the cached JSON payload of a menu variant, loading and
// storing it on a miss. Concurrent misses share one load, which runs detached
// from the callers' cancellation; each caller stops waiting when its own ctx ends.
func (m *MenuCache) GetOrLoad(ctx context.Context, shopID uint, variant string, load func(ctx context.Context) (any, error)) ([]byte, error) {
	if !m.enabled {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	}
	key := Key(shopID, variant)
	if data, ok := m.layers.Get(ctx, key); ok {
		return data, nil
	}

	ch := m.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		value, err := load(lctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal menu: %w", err)
		}
		if err := m.layers.Set(lctx, key, data); err != nil {
			m.logger.Warn("failed to store menu in L2 cache", zap.String("key", key), zap.Error(err))
		}
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// InvalidateShops drops every cached menu variant of the given shops
func (m *MenuCache) InvalidateShops(ctx context.Context, shopIDs ...uint) {
	for _, id := range shopIDs {
		if err := m.layers.DeletePrefix(ctx, shopPrefix(id)); err != nil {
			m.logger.Warn("failed to invalidate shop menu", zap.Uint("shop_id", id), zap.Error(err))
		}
	}
}

// InvalidateAll drops every cached menu
func (m *MenuCache) InvalidateAll(ctx context.Context) {
	if err := m.layers.DeletePrefix(ctx, "shop:"); err != nil {
		m.logger.Warn("failed to invalidate menus", zap.Error(err))
	}
}
