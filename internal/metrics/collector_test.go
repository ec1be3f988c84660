package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollector_RecordCaption(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("captionflow", reg, zap.NewNop())

	c.RecordCaption("anthropic", OutcomeSuccess, 2*time.Second)
	c.RecordCaption("anthropic", OutcomeFailure, time.Second)
	c.RecordCaption("gemini", OutcomeSuccess, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.captionsTotal.WithLabelValues("anthropic", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.captionsTotal.WithLabelValues("anthropic", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.captionsTotal.WithLabelValues("gemini", OutcomeSuccess)))
}

func TestCollector_RecordUsage(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("captionflow", reg, zap.NewNop())

	tokens := 1200
	cost := 0.006
	c.RecordUsage("anthropic", &tokens, &cost)
	c.RecordUsage("gemini", nil, nil) // 缺省用量不计数

	assert.Equal(t, 1200.0, testutil.ToFloat64(c.tokensTotal.WithLabelValues("anthropic")))
	assert.InDelta(t, 0.006, testutil.ToFloat64(c.costTotal.WithLabelValues("anthropic")), 1e-9)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.tokensTotal.WithLabelValues("gemini")))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.RecordCaption("openai", OutcomeSuccess, time.Second)
		c.RecordRetry("openai")
		c.RecordUsage("openai", nil, nil)
	})
}
