package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 运费引擎指标
type Metrics struct {
	registry *prometheus.Registry

	QuotesTotal     *prometheus.CounterVec
	QuoteDuration   prometheus.Histogram
	MethodsExcluded *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// Outcome 报价结果标签
const (
	OutcomeOK          = "ok"
	OutcomePartial     = "partial"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid_input"
	OutcomeError       = "error"
)

// New 创建指标实例；每个实例使用独立 registry，测试可重复创建
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Shipping quotes computed, by outcome",
		}, []string{"outcome"}),
		QuoteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_seconds",
			Help:      "Time spent computing a shipping quote",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		MethodsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "methods_excluded_total",
			Help:      "Delivery methods dropped from a producer's options, by reason",
		}, []string{"reason"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Rate cache lookups by category and result",
		}, []string{"category", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
	}

	registry.MustRegister(m.QuotesTotal, m.QuoteDuration, m.MethodsExcluded, m.CacheLookups, m.HTTPRequests)
	return m
}

// ObserveQuote 记录一次报价
func (m *Metrics) ObserveQuote(outcome string, elapsed time.Duration) {
	m.QuotesTotal.WithLabelValues(outcome).Inc()
	m.QuoteDuration.Observe(elapsed.Seconds())
}

// MethodExcluded 记录被过滤的配送方式
func (m *Metrics) MethodExcluded(reason string) {
	m.MethodsExcluded.WithLabelValues(reason).Inc()
}

// CacheLookup 实现 cache.Observer
func (m *Metrics) CacheLookup(category string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(category, result).Inc()
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
