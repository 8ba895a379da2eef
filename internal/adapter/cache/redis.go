package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

const redisKeyPrefix = "carcache:"

// Redis backs the car cache with a shared Redis instance so that multiple
// gateway replicas see each other's descriptors. Same semantics as Memory:
// last writer wins, no TTL. Redis errors degrade to cache misses; the cache
// is best-effort by contract.
type Redis struct {
	cli *redis.Client
}

// NewRedis constructs a Redis-backed car cache from a redis URL.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{cli: redis.NewClient(opts)}, nil
}

// NewRedisWithClient wraps an existing client; used by tests.
func NewRedisWithClient(cli *redis.Client) *Redis { return &Redis{cli: cli} }

// Ping checks connectivity.
func (c *Redis) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

// Put records the descriptor for its carUid.
func (c *Redis) Put(ctx context.Context, info domain.CarInfo) {
	b, err := json.Marshal(info)
	if err != nil {
		slog.Error("car cache marshal failed", slog.Any("error", err))
		return
	}
	if err := c.cli.Set(ctx, redisKeyPrefix+info.CarUID, b, 0).Err(); err != nil {
		slog.Warn("car cache write failed", slog.String("car_uid", info.CarUID), slog.Any("error", err))
	}
}

// Get returns the cached descriptor and whether one exists.
func (c *Redis) Get(ctx context.Context, carUID string) (domain.CarInfo, bool) {
	b, err := c.cli.Get(ctx, redisKeyPrefix+carUID).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("car cache read failed", slog.String("car_uid", carUID), slog.Any("error", err))
		}
		return domain.CarInfo{}, false
	}
	var info domain.CarInfo
	if err := json.Unmarshal(b, &info); err != nil {
		slog.Error("car cache unmarshal failed", slog.String("car_uid", carUID), slog.Any("error", err))
		return domain.CarInfo{}, false
	}
	return info, true
}

// Entries scans the key space and returns the full mapping.
func (c *Redis) Entries(ctx context.Context) map[string]domain.CarInfo {
	out := make(map[string]domain.CarInfo)
	iter := c.cli.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		b, err := c.cli.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var info domain.CarInfo
		if err := json.Unmarshal(b, &info); err != nil {
			continue
		}
		out[strings.TrimPrefix(key, redisKeyPrefix)] = info
	}
	if err := iter.Err(); err != nil {
		slog.Warn("car cache scan failed", slog.Any("error", err))
	}
	return out
}
