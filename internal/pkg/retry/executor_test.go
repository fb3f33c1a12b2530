package retry

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/pkg/metrics"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries: maxRetries,
		MinTimeout: time.Millisecond,
		MaxTimeout: 4 * time.Millisecond,
		Factor:     2,
	}
}

func TestDoStopsAfterMaxRetries(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	e := NewExecutor(fastConfig(3), m)
	boom := errors.New("boom")

	calls := 0
	_, err := Do(context.Background(), e, "es.search", func() (int, error) {
		calls++
		return 0, boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RetryErrors.WithLabelValues("es.search")))
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	e := NewExecutor(fastConfig(3), nil)

	calls := 0
	got, err := Do(context.Background(), e, "es.count", func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestZeroRetriesRunsOnce(t *testing.T) {
	e := NewExecutor(fastConfig(0), nil)

	calls := 0
	err := e.Run(context.Background(), "es.delete", func() error {
		calls++
		return errors.New("nope")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackOffSchedule(t *testing.T) {
	e := NewExecutor(Config{
		MaxRetries: 5,
		MinTimeout: 100 * time.Millisecond,
		MaxTimeout: 500 * time.Millisecond,
		Factor:     2,
	}, nil)

	b := e.newBackOff()
	b.Reset()
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}
	for i, w := range want {
		assert.Equal(t, w, b.NextBackOff(), "delay %d", i)
	}
}

func TestDoHonoursCancellation(t *testing.T) {
	e := NewExecutor(Config{
		MaxRetries: 10,
		MinTimeout: time.Hour,
		MaxTimeout: time.Hour,
		Factor:     1,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, e, "es.update", func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoReturnsCancelCause(t *testing.T) {
	e := NewExecutor(Config{MaxRetries: 3, MinTimeout: time.Hour, MaxTimeout: time.Hour, Factor: 1}, nil)

	shutdown := errors.New("shutting down")
	fnErr := errors.New("index unavailable")
	ctx, cancel := context.WithCancelCause(context.Background())
	_, err := Do(ctx, e, "es.update", func() (int, error) {
		cancel(shutdown)
		return 0, fnErr
	})

	assert.ErrorIs(t, err, shutdown)
	assert.NotErrorIs(t, err, fnErr)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RetryConfig{MaxRetries: 3, MinTimeout: 100, MaxTimeout: 2000, Factor: 2})
	assert.Equal(t, 100*time.Millisecond, cfg.MinTimeout)
	assert.Equal(t, 2*time.Second, cfg.MaxTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
}
