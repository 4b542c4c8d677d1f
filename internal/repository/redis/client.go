package redis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/blog/backend/internal/config"
)

// Connect dials Redis and pings it. REDIS_URL may be a redis:// URL or a
// bare host:port.
func Connect(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	log.Println("[REDIS] Connected successfully")
	return client, nil
}

func options(cfg config.Redis) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	if strings.HasPrefix(cfg.URL, "redis://") || strings.HasPrefix(cfg.URL, "rediss://") {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       0,
	}, nil
}

// RedisCache acts as a wrapper around redis.Client to implement CacheRepository interface
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}
