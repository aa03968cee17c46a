// Package redis implements the hot-store contract on a redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
)

// HotStore adapts a go-redis client to repo.HotStore. Transport failures are
// wrapped with errno.ErrStoreUnavailable so callers can choose a degraded
// path instead of failing the turn.
type HotStore struct {
	client *goredis.Client
}

var _ repo.HotStore = (*HotStore)(nil)

// Config carries the redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewHotStore connects to redis and verifies the connection with a ping.
func NewHotStore(ctx context.Context, cfg Config) (*HotStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect redis at %s: %w", cfg.Addr, err)
	}
	return &HotStore{client: client}, nil
}

// Close releases the client connection pool.
func (s *HotStore) Close() error { return s.client.Close() }

func (s *HotStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", repo.ErrKeyNotFound
	}
	if err != nil {
		return "", wrap("GET", key, err)
	}
	return v, nil
}

func (s *HotStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap("SET", key, err)
	}
	return nil
}

func (s *HotStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	v, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrap("HGETALL", key, err)
	}
	return v, nil
}

func (s *HotStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if err := s.client.HSet(ctx, key, args...).Err(); err != nil {
		return wrap("HSET", key, err)
	}
	return nil
}

func (s *HotStore) LPush(ctx context.Context, key string, values ...string) error {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	if err := s.client.LPush(ctx, key, args...).Err(); err != nil {
		return wrap("LPUSH", key, err)
	}
	return nil
}

func (s *HotStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	v, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrap("LRANGE", key, err)
	}
	return v, nil
}

func (s *HotStore) LLen(ctx context.Context, key string) (int64, error) {
	v, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, wrap("LLEN", key, err)
	}
	return v, nil
}

func (s *HotStore) LSet(ctx context.Context, key string, index int64, value string) error {
	if err := s.client.LSet(ctx, key, index, value).Err(); err != nil {
		return wrap("LSET", key, err)
	}
	return nil
}

func (s *HotStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return wrap("EXPIRE", key, err)
	}
	return nil
}

func (s *HotStore) Del(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return wrap("DEL", keys[0], err)
	}
	return nil
}

func wrap(op, key string, err error) error {
	return fmt.Errorf("%w: redis %s %q: %v", errno.ErrStoreUnavailable, op, key, err)
}
