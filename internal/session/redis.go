package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on redis. Each session is a key with a TTL and
// every user has a set indexing its session ids.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisClient connects to redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a store using client and key prefix
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) userKey(userID uint) string {
	return r.prefix + "user:" + strconv.FormatUint(uint64(userID), 10)
}

// Save implements Store
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return ErrSessionNotFound
		}
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(s.ID), data, ttl)
	pipe.SAdd(ctx, r.userKey(s.UserID), s.ID)
	if ttl > 0 {
		// sessions share one TTL, so the index lives as long as the newest one
		pipe.Expire(ctx, r.userKey(s.UserID), ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Get implements Store
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete implements Store
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.userKey(s.UserID), id)
	_, err = pipe.Exec(ctx)
	return err
}

// DeleteByUser implements Store
func (r *RedisStore) DeleteByUser(ctx context.Context, userID uint) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.key(id))
	}
	keys = append(keys, r.userKey(userID))
	return r.client.Del(ctx, keys...).Err()
}

// CountByUser implements Store. Index entries whose session key expired are pruned.
func (r *RedisStore) CountByUser(ctx context.Context, userID uint) (int, error) {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	pipe := r.client.Pipeline()
	checks := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, r.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	n := 0
	stale := make([]any, 0)
	for i, cmd := range checks {
		if cmd.Val() > 0 {
			n++
		} else {
			stale = append(stale, ids[i])
		}
	}
	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.userKey(userID), stale...).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
