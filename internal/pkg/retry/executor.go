package retry

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/pkg/metrics"
	"context"
	log "log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Config 重试参数。MaxRetries 为失败后的额外尝试次数，总调用次数为 MaxRetries+1
type Config struct {
	MaxRetries int
	MinTimeout time.Duration
	MaxTimeout time.Duration
	Factor     float64
}

// FromConfig 由 elastic.retry 配置构造
func FromConfig(c config.RetryConfig) Config {
	return Config{
		MaxRetries: c.MaxRetries,
		MinTimeout: time.Duration(c.MinTimeout) * time.Millisecond,
		MaxTimeout: time.Duration(c.MaxTimeout) * time.Millisecond,
		Factor:     c.Factor,
	}
}

// Executor 以有界指数退避执行任意操作
type Executor struct {
	cfg     Config
	metrics *metrics.Metrics
}

func NewExecutor(cfg Config, m *metrics.Metrics) *Executor {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Factor < 1 {
		cfg.Factor = 1
	}
	if cfg.MaxTimeout < cfg.MinTimeout {
		cfg.MaxTimeout = cfg.MinTimeout
	}
	return &Executor{cfg: cfg, metrics: m}
}

// newBackOff 第 n 次重试前等待 min(MaxTimeout, MinTimeout*Factor^n)，不加抖动
func (e *Executor) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.MinTimeout
	b.MaxInterval = e.cfg.MaxTimeout
	b.Multiplier = e.cfg.Factor
	b.RandomizationFactor = 0
	return b
}

// Run 执行无返回值的操作
func (e *Executor) Run(ctx context.Context, operation string, fn func() error) error {
	_, err := Do(ctx, e, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Do 执行 fn，失败时重试，耗尽后原样返回最后一次的错误。
// 例外：ctx 取消或超时时返回 context.Cause(ctx)，而不是 fn 的错误
func Do[T any](ctx context.Context, e *Executor, operation string, fn func() (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		res, err := fn()
		if err != nil {
			e.metrics.IncRetryError(operation)
			log.WarnContext(ctx, "operation attempt failed",
				"operation", operation,
				"attempt", attempt,
				"retries_left", e.cfg.MaxRetries-attempt+1,
				"err", err,
			)
		}
		return res, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(e.newBackOff()),
		backoff.WithMaxTries(uint(e.cfg.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
	)
}
