package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mosaic"

// Cache 请求结果标签
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics 进程内的指标集合，所有方法对 nil 接收者安全
type Metrics struct {
	RetryErrors   *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
	StoreLatency  *prometheus.HistogramVec
	StaleEntries  prometheus.Gauge
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RetryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_errors_total",
			Help:      "Failed attempts observed by the retry executor",
		}, []string{"operation"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by outcome",
		}, []string{"operation", "result"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_latency_seconds",
			Help:      "Latency of backing store calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		StaleEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_stale_entries",
			Help:      "Cached documents known to be stale",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.RetryErrors, m.CacheRequests, m.StoreLatency, m.StaleEntries)
	}
	return m
}

func (m *Metrics) IncRetryError(operation string) {
	if m == nil {
		return
	}
	m.RetryErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveCache(operation, result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveStore(store, operation string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreLatency.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetStaleEntries(n int64) {
	if m == nil {
		return
	}
	m.StaleEntries.Set(float64(n))
}

// Handler 暴露 /metrics
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
