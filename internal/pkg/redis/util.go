package redis

import (
	"Mosaic/internal/pkg/metrics"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanCount = 100

// CacheStore 字符串键值缓存。失败时 Get 视为未命中，集合查询返回空
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	Expire(ctx context.Context, key string, ttl time.Duration)
	Scan(ctx context.Context, pattern string) []string
	SetAdd(ctx context.Context, key string, members ...string)
	SetCardinality(ctx context.Context, key string) int64
	SetMembers(ctx context.Context, key string) []string
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "get", key, err)
		return "", false
	}

	val, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		c.metrics.ObserveCache("get", metrics.CacheMiss)
		return "", false
	}
	if err != nil {
		c.failed(ctx, client, "get", key, err)
		return "", false
	}

	c.metrics.ObserveCache("get", metrics.CacheHit)
	return val, true
}

// Set 使用默认 TTL
func (c *Cache) Set(ctx context.Context, key, value string) {
	c.SetWithExpiration(ctx, key, value, c.defaultTTL)
}

// SetWithExpiration ttl <= 0 时使用默认 TTL
func (c *Cache) SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "set", key, err)
		return
	}
	if err = client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.failed(ctx, client, "set", key, err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "del", keys[0], err)
		return
	}
	if err = client.Del(ctx, keys...).Err(); err != nil {
		c.failed(ctx, client, "del", keys[0], err)
	}
}

func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) {
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "expire", key, err)
		return
	}
	if err = client.Expire(ctx, key, ttl).Err(); err != nil {
		c.failed(ctx, client, "expire", key, err)
	}
}

// Scan 遍历匹配 pattern 的全部键
func (c *Cache) Scan(ctx context.Context, pattern string) []string {
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "scan", pattern, err)
		return []string{}
	}

	keys := make([]string, 0)
	iter := client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err = iter.Err(); err != nil {
		c.failed(ctx, client, "scan", pattern, err)
		return []string{}
	}
	return keys
}

func (c *Cache) SetAdd(ctx context.Context, key string, members ...string) {
	if len(members) == 0 {
		return
	}
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "sadd", key, err)
		return
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err = client.SAdd(ctx, key, args...).Err(); err != nil {
		c.failed(ctx, client, "sadd", key, err)
	}
}

func (c *Cache) SetCardinality(ctx context.Context, key string) int64 {
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "scard", key, err)
		return 0
	}
	n, err := client.SCard(ctx, key).Result()
	if err != nil {
		c.failed(ctx, client, "scard", key, err)
		return 0
	}
	return n
}

func (c *Cache) SetMembers(ctx context.Context, key string) []string {
	client, err := c.conn(ctx)
	if err != nil {
		c.failed(ctx, nil, "smembers", key, err)
		return []string{}
	}
	members, err := client.SMembers(ctx, key).Result()
	if err != nil {
		c.failed(ctx, client, "smembers", key, err)
		return []string{}
	}
	return members
}
