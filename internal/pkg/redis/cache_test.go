package redis

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/pkg/metrics"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *metrics.Metrics) {
	t.Helper()
	s := miniredis.RunT(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	c := NewCache(config.RedisConfig{Addr: s.Addr(), PoolSize: 2, DefaultTTL: 60}, m)
	t.Cleanup(func() { _ = c.Close() })
	return c, s, m
}

func TestGetSetUsesDefaultTTL(t *testing.T) {
	c, s, m := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "post:doc:d1")
	assert.False(t, ok)

	c.Set(ctx, "post:doc:d1", `{"id":"d1"}`)
	got, ok := c.Get(ctx, "post:doc:d1")
	require.True(t, ok)
	assert.Equal(t, `{"id":"d1"}`, got)
	assert.Equal(t, 60*time.Second, s.TTL("post:doc:d1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("get", metrics.CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("get", metrics.CacheMiss)))
}

func TestExplicitTTLOverridesDefault(t *testing.T) {
	c, s, _ := newTestCache(t)
	ctx := context.Background()

	c.SetWithExpiration(ctx, "k", "v", 5*time.Second)
	assert.Equal(t, 5*time.Second, s.TTL("k"))

	c.Expire(ctx, "k", 2*time.Second)
	assert.Equal(t, 2*time.Second, s.TTL("k"))

	s.FastForward(3 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestDeleteAndScan(t *testing.T) {
	c, s, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "suggest:cat:both:5", "{}")
	c.Set(ctx, "suggest:dog:both:5", "{}")
	c.Set(ctx, "profile:id:u1", "{}")

	keys := c.Scan(ctx, "suggest:*")
	sort.Strings(keys)
	assert.Equal(t, []string{"suggest:cat:both:5", "suggest:dog:both:5"}, keys)

	c.Delete(ctx, keys...)
	assert.False(t, s.Exists("suggest:cat:both:5"))
	assert.True(t, s.Exists("profile:id:u1"))
}

func TestSets(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	c.SetAdd(ctx, "post:stale", "d1", "d2")
	c.SetAdd(ctx, "post:stale", "d1")

	assert.Equal(t, int64(2), c.SetCardinality(ctx, "post:stale"))
	members := c.SetMembers(ctx, "post:stale")
	sort.Strings(members)
	assert.Equal(t, []string{"d1", "d2"}, members)
}

func TestUnavailableBackendIsSilent(t *testing.T) {
	c, s, m := newTestCache(t)
	ctx := context.Background()
	s.Close()

	assert.NotPanics(t, func() {
		_, ok := c.Get(ctx, "k")
		assert.False(t, ok)
		c.Set(ctx, "k", "v")
		c.Delete(ctx, "k")
		c.Expire(ctx, "k", time.Second)
		assert.Empty(t, c.Scan(ctx, "*"))
		assert.Empty(t, c.SetMembers(ctx, "s"))
		assert.Zero(t, c.SetCardinality(ctx, "s"))
	})
	assert.Greater(t, testutil.ToFloat64(m.CacheRequests.WithLabelValues("get", metrics.CacheError)), 0.0)
}

func TestServerErrorsAreSwallowed(t *testing.T) {
	c, s, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	s.SetError("LOADING dataset")
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	s.SetError("")
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestReconnectsAfterRestart(t *testing.T) {
	c, s, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v1")
	s.Close()
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, s.Restart())
	c.Set(ctx, "k", "v2")
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestCanceledCallKeepsConnection(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	before := c.client
	require.NotNil(t, before)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, ok := c.Get(canceled, "k")
	assert.False(t, ok)
	assert.ErrorIs(t, c.Ping(canceled), context.Canceled)
	assert.Same(t, before, c.client)

	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestFailedDialCoolsDown(t *testing.T) {
	c, s, _ := newTestCache(t)
	ctx := context.Background()
	s.Close()

	require.Error(t, c.Ping(ctx))
	require.NoError(t, s.Restart())
	assert.ErrorIs(t, c.Ping(ctx), ErrReconnectPending)

	c.mu.Lock()
	c.retryAt = time.Time{}
	c.mu.Unlock()
	assert.NoError(t, c.Ping(ctx))
}
