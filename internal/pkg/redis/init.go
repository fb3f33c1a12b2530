package redis

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/pkg/logger"
	"Mosaic/internal/pkg/metrics"
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

// Cache 尽力而为的缓存，连接在首次使用时建立，断开后下次调用重新建立。
// 所有操作都不会向调用方返回错误。
type Cache struct {
	opts       *redis.Options
	defaultTTL time.Duration
	metrics    *metrics.Metrics

	mu      sync.Mutex
	client  *redis.Client
	dialing bool
	retryAt time.Time
}

var _ CacheStore = (*Cache)(nil)

// NewCache 只保存配置，不建立连接
func NewCache(cfg config.RedisConfig, m *metrics.Metrics) *Cache {
	return &Cache{
		opts: &redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			MaxRetries:   1,

			MaintNotificationsConfig: &maintnotifications.Config{
				Mode: maintnotifications.ModeDisabled,
			},
		},
		defaultTTL: cfg.TTL(),
		metrics:    m,
	}
}

// ErrReconnectPending 上次建连失败后的冷却期内直接返回
var ErrReconnectPending = errors.New("redis reconnect pending")

const reconnectCooldown = time.Second

// conn 返回当前连接，没有时在锁外建立并 PING。
// 建连期间及失败后的冷却期内，其他调用直接返回 ErrReconnectPending
func (c *Cache) conn(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	if c.client != nil {
		client := c.client
		c.mu.Unlock()
		return client, nil
	}
	if c.dialing || time.Now().Before(c.retryAt) {
		c.mu.Unlock()
		return nil, ErrReconnectPending
	}
	c.dialing = true
	c.mu.Unlock()

	client := redis.NewClient(c.opts)
	client.AddHook(logger.NewRedisLogger())
	err := client.Ping(ctx).Err()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialing = false
	if err != nil {
		_ = client.Close()
		if !isContextErr(err) {
			c.retryAt = time.Now().Add(reconnectCooldown)
		}
		return nil, err
	}

	log.InfoContext(ctx, "Connected to Redis", "addr", c.opts.Addr)
	c.client = client
	c.retryAt = time.Time{}
	return client, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// drop 丢弃出现连接级错误的客户端
func (c *Cache) drop(client *redis.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == client {
		_ = c.client.Close()
		c.client = nil
	}
}

// failed 记录错误；调用方取消不算连接故障，其余非服务端应答错误才丢弃连接
func (c *Cache) failed(ctx context.Context, client *redis.Client, op, key string, err error) {
	c.metrics.ObserveCache(op, metrics.CacheError)
	log.WarnContext(ctx, "cache operation failed", "op", op, "key", key, "err", err)

	var replyErr redis.Error
	if client != nil && !isContextErr(err) && !errors.As(err, &replyErr) {
		c.drop(client)
	}
}

// Ping 检查可用性，供启动日志和健康检查使用
func (c *Cache) Ping(ctx context.Context) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	if err = client.Ping(ctx).Err(); err != nil {
		if !isContextErr(err) {
			c.drop(client)
		}
		return err
	}
	return nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
