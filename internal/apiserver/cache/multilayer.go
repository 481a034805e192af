package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheLayer represents the cache layer type
type CacheLayer string

const (
	L1Memory CacheLayer = "L1_MEMORY"
	L2Redis  CacheLayer = "L2_REDIS"
)

// CacheEntry represents a cached payload with metadata
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// CacheStats represents cache statistics
type CacheStats struct {
	L1Memory MemoryStats `json:"l1Memory"`
	L2Redis  RedisStats  `json:"l2Redis"`
	Total    TotalStats  `json:"total"`
}

type MemoryStats struct {
	Entries   int64 `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	TotalSize int64 `json:"totalSize"`
}

type RedisStats struct {
	Enabled bool  `json:"enabled"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Errors  int64 `json:"errors"`
}

type TotalStats struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hitRate"`
	Operations int64   `json:"operations"`
}

// MultiLayerCache provides L1 (memory) + optional L2 (Redis) caching of byte payloads
type MultiLayerCache struct {
	logger    *zap.Logger
	l2Cache   redis.Cmdable
	keyPrefix string

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front is most recently used
	size  int64
	stats CacheStats

	l1TTL     time.Duration
	l2TTL     time.Duration
	maxL1Size int64
	now       func() time.Time
}

type l1Item struct {
	key   string
	entry *CacheEntry
}

// MultiLayerCacheConfig holds configuration for the cache
type MultiLayerCacheConfig struct {
	RedisClient redis.Cmdable // nil keeps the cache in memory only
	KeyPrefix   string
	L1TTL       time.Duration
	L2TTL       time.Duration
	MaxL1Size   int64 // Maximum L1 cache size in bytes
}

// NewMultiLayerCache creates a new multi-layer cache instance
func NewMultiLayerCache(config MultiLayerCacheConfig, logger *zap.Logger) *MultiLayerCache {
	if config.L1TTL == 0 {
		config.L1TTL = time.Minute
	}
	if config.L2TTL == 0 {
		config.L2TTL = 10 * time.Minute
	}
	if config.MaxL1Size == 0 {
		config.MaxL1Size = 32 * 1024 * 1024 // 32MB
	}

	c := &MultiLayerCache{
		logger:    logger.Named("cache.multilayer"),
		l2Cache:   config.RedisClient,
		keyPrefix: config.KeyPrefix,
		items:     make(map[string]*list.Element),
		order:     list.New(),
		l1TTL:     config.L1TTL,
		l2TTL:     config.L2TTL,
		maxL1Size: config.MaxL1Size,
		now:       time.Now,
	}
	c.stats.L2Redis.Enabled = config.RedisClient != nil
	return c
}

// Get retrieves a payload, checking L1 first, then L2
func (mlc *MultiLayerCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if entry, found := mlc.getFromL1(key); found {
		mlc.record(func(s *CacheStats) {
			s.L1Memory.Hits++
			s.Total.Hits++
		})
		return entry.Data, true
	}

	if entry, found := mlc.getFromL2(ctx, key); found {
		// Promote to L1 with the shorter TTL
		l1 := *entry
		if l1Exp := mlc.now().Add(mlc.l1TTL); l1Exp.Before(l1.ExpiresAt) {
			l1.ExpiresAt = l1Exp
		}
		mlc.setToL1(key, &l1)
		mlc.record(func(s *CacheStats) {
			s.L1Memory.Misses++
			s.L2Redis.Hits++
			s.Total.Hits++
		})
		return entry.Data, true
	}

	mlc.record(func(s *CacheStats) {
		s.L1Memory.Misses++
		if mlc.l2Cache != nil {
			s.L2Redis.Misses++
		}
		s.Total.Misses++
	})
	return nil, false
}

// Set stores a payload in both layers
func (mlc *MultiLayerCache) Set(ctx context.Context, key string, data []byte) error {
	now := mlc.now()
	mlc.setToL1(key, &CacheEntry{Data: data, ExpiresAt: now.Add(mlc.l1TTL), CreatedAt: now})
	if mlc.l2Cache == nil {
		return nil
	}
	return mlc.setToL2(ctx, key, &CacheEntry{Data: data, ExpiresAt: now.Add(mlc.l2TTL), CreatedAt: now})
}

// Delete removes an item from both cache layers
func (mlc *MultiLayerCache) Delete(ctx context.Context, key string) error {
	mlc.mu.Lock()
	mlc.removeLocked(key)
	mlc.mu.Unlock()

	if mlc.l2Cache == nil {
		return nil
	}
	return mlc.l2Cache.Del(ctx, mlc.redisKey(key)).Err()
}

// DeletePrefix removes every key starting with prefix from both layers
func (mlc *MultiLayerCache) DeletePrefix(ctx context.Context, prefix string) error {
	mlc.mu.Lock()
	for key := range mlc.items {
		if strings.HasPrefix(key, prefix) {
			mlc.removeLocked(key)
		}
	}
	mlc.mu.Unlock()

	if mlc.l2Cache == nil {
		return nil
	}
	var keys []string
	iter := mlc.l2Cache.Scan(ctx, 0, mlc.redisKey(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan L2 cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return mlc.l2Cache.Del(ctx, keys...).Err()
}

// Clear removes all items from both cache layers
func (mlc *MultiLayerCache) Clear(ctx context.Context) error {
	mlc.mu.Lock()
	mlc.items = make(map[string]*list.Element)
	mlc.order.Init()
	mlc.size = 0
	mlc.stats = CacheStats{L2Redis: RedisStats{Enabled: mlc.l2Cache != nil}}
	mlc.mu.Unlock()

	return mlc.DeletePrefix(ctx, "")
}

// GetStats returns current cache statistics
func (mlc *MultiLayerCache) GetStats() CacheStats {
	mlc.mu.Lock()
	defer mlc.mu.Unlock()

	stats := mlc.stats
	stats.Total.Operations = stats.Total.Hits + stats.Total.Misses
	if stats.Total.Operations > 0 {
		stats.Total.HitRate = float64(stats.Total.Hits) / float64(stats.Total.Operations)
	}
	stats.L1Memory.Entries = int64(len(mlc.items))
	stats.L1Memory.TotalSize = mlc.size
	return stats
}

// L1 cache operations

func (mlc *MultiLayerCache) getFromL1(key string) (*CacheEntry, bool) {
	mlc.mu.Lock()
	defer mlc.mu.Unlock()

	el, ok := mlc.items[key]
	if !ok {
		return nil, false
	}
	item := el.Value.(*l1Item)
	if item.entry.ExpiresAt.Before(mlc.now()) {
		mlc.removeLocked(key)
		return nil, false
	}
	mlc.order.MoveToFront(el)
	return item.entry, true
}

func (mlc *MultiLayerCache) setToL1(key string, entry *CacheEntry) {
	size := int64(len(entry.Data))
	if size > mlc.maxL1Size {
		return
	}

	mlc.mu.Lock()
	defer mlc.mu.Unlock()

	mlc.removeLocked(key)
	for mlc.size+size > mlc.maxL1Size && mlc.order.Len() > 0 {
		oldest := mlc.order.Back().Value.(*l1Item)
		mlc.removeLocked(oldest.key)
		mlc.stats.L1Memory.Evictions++
	}
	mlc.items[key] = mlc.order.PushFront(&l1Item{key: key, entry: entry})
	mlc.size += size
}

// removeLocked drops key from L1. Callers hold mlc.mu.
func (mlc *MultiLayerCache) removeLocked(key string) {
	el, ok := mlc.items[key]
	if !ok {
		return
	}
	mlc.size -= int64(len(el.Value.(*l1Item).entry.Data))
	mlc.order.Remove(el)
	delete(mlc.items, key)
}

// L2 cache operations

func (mlc *MultiLayerCache) getFromL2(ctx context.Context, key string) (*CacheEntry, bool) {
	if mlc.l2Cache == nil {
		return nil, false
	}
	data, err := mlc.l2Cache.Get(ctx, mlc.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		mlc.record(func(s *CacheStats) { s.L2Redis.Errors++ })
		mlc.logger.Error("failed to get from L2 cache", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		mlc.logger.Error("failed to unmarshal L2 cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if entry.ExpiresAt.Before(mlc.now()) {
		mlc.l2Cache.Del(ctx, mlc.redisKey(key))
		return nil, false
	}
	return &entry, true
}

func (mlc *MultiLayerCache) setToL2(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	ttl := entry.ExpiresAt.Sub(mlc.now())
	if ttl <= 0 {
		return nil
	}
	if err := mlc.l2Cache.Set(ctx, mlc.redisKey(key), data, ttl).Err(); err != nil {
		mlc.record(func(s *CacheStats) { s.L2Redis.Errors++ })
		return err
	}
	return nil
}

// Utility methods

func (mlc *MultiLayerCache) redisKey(key string) string {
	return mlc.keyPrefix + key
}

func (mlc *MultiLayerCache) record(update func(*CacheStats)) {
	mlc.mu.Lock()
	defer mlc.mu.Unlock()
	update(&mlc.stats)
}

// StartCleanup evicts expired L1 entries every interval until ctx is done
func (mlc *MultiLayerCache) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mlc.cleanupExpiredEntries()
		}
	}
}

func (mlc *MultiLayerCache) cleanupExpiredEntries() {
	now := mlc.now()
	mlc.mu.Lock()
	defer mlc.mu.Unlock()

	removed := 0
	for key, el := range mlc.items {
		if el.Value.(*l1Item).entry.ExpiresAt.Before(now) {
			mlc.removeLocked(key)
			removed++
		}
	}
	if removed > 0 {
		mlc.logger.Debug("cleaned up expired cache entries", zap.Int("count", removed))
	}
}
