package job

import (
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/logger"
	"Mosaic/internal/pkg/metrics"
	"Mosaic/internal/pkg/redis"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

const staleSampleSize = 10

// CacheHealthJob 统计解析失败后仍保留的旧帖子缓存
type CacheHealthJob struct {
	cache   redis.CacheStore
	metrics *metrics.Metrics
}

func NewCacheHealthJob(cache redis.CacheStore, m *metrics.Metrics) *CacheHealthJob {
	return &CacheHealthJob{cache: cache, metrics: m}
}

func (s *CacheHealthJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-cache-health-"+uuid.NewString())
	s.check(ctx)
}

func (s *CacheHealthJob) check(ctx context.Context) int64 {
	n := s.cache.SetCardinality(ctx, consts.PostStaleKey)
	s.metrics.SetStaleEntries(n)
	if n == 0 {
		return 0
	}

	sample := s.cache.SetMembers(ctx, consts.PostStaleKey)
	if len(sample) > staleSampleSize {
		sample = sample[:staleSampleSize]
	}
	log.WarnContext(ctx, "Stale post cache entries present", "count", n, "sample", sample)
	return n
}
