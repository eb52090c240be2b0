package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"digo_messenger/config"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 3 * time.Second

var rdb *redis.Client

// InitRedis 按配置连接 Redis；REDIS_URL 为空时不连接，返回 nil
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisURL, err)
	}

	rdb = client
	log.Printf("Redis connected (%s, db %d), typing signals stored in Redis", cfg.RedisURL, cfg.RedisDB)
	return client, nil
}

// CloseRedis 关闭 Redis 连接
func CloseRedis() error {
	if rdb == nil {
		return nil
	}
	err := rdb.Close()
	rdb = nil
	return err
}
