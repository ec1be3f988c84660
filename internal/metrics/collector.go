// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector 指标收集器
//
// nil Collector 是合法的空实现，所有记录方法都可安全调用。
type Collector struct {
	captionsTotal   *prometheus.CounterVec
	captionDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	costTotal       *prometheus.CounterVec

	logger *zap.Logger
}

// 结果标签值
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// NewCollector 创建指标收集器并注册到 reg。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		captionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "captions_total",
				Help:      "Total caption requests by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		captionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "caption_duration_seconds",
				Help:      "Caption request duration, backoff waits included.",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"provider"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "caption_retries_total",
				Help:      "Total retry attempts by provider.",
			},
			[]string{"provider"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "caption_tokens_total",
				Help:      "Total tokens reported by providers.",
			},
			[]string{"provider"},
		),
		costTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "caption_cost_total",
				Help:      "Approximate accumulated cost estimate by provider.",
			},
			[]string{"provider"},
		),
		logger: logger.With(zap.String("component", "metrics")),
	}
}

// RecordCaption 记录一次请求的结局与耗时。
func (c *Collector) RecordCaption(provider, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.captionsTotal.WithLabelValues(provider, outcome).Inc()
	c.captionDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordRetry 记录一次重试。
func (c *Collector) RecordRetry(provider string) {
	if c == nil {
		return
	}
	c.retriesTotal.WithLabelValues(provider).Inc()
}

// RecordUsage 记录厂商上报的 token 用量与成本估算。
func (c *Collector) RecordUsage(provider string, tokens *int, cost *float64) {
	if c == nil {
		return
	}
	if tokens != nil {
		c.tokensTotal.WithLabelValues(provider).Add(float64(*tokens))
	}
	if cost != nil {
		c.costTotal.WithLabelValues(provider).Add(*cost)
	}
}
