package captioner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/captionflow/imaging"
)

// encodedData 返回 src 经标准编码器产出的 payload，用作逐项身份标识。
func encodedData(t *testing.T, src imaging.Source) string {
	t.Helper()
	img, err := imaging.NewEncoder(0).Encode(src)
	require.NoError(t, err)
	return img.Data
}

func TestCaptionImages_EmptyBatch(t *testing.T) {
	c := newTestCaptioner(t, testConfig(), &stubProvider{})
	results := c.CaptionImages(context.Background(), nil)
	assert.Empty(t, results)
}

func TestCaptionImages_OrderMatchesInputUnderJitter(t *testing.T) {
	// stub 回显 payload 并随机延迟，模拟乱序完成
	stub := &stubProvider{
		jitter:      20 * time.Millisecond,
		captionFunc: func(img *imaging.EncodedImage) string { return img.Data },
	}
	cfg := testConfig()
	cfg.MaxConcurrent = 3
	c := newTestCaptioner(t, cfg, stub)

	srcs := make([]imaging.Source, 8)
	expected := make([]string, 8)
	for i := range srcs {
		srcs[i] = testSource(4 + i)
		expected[i] = encodedData(t, srcs[i])
	}

	results := c.CaptionImages(context.Background(), srcs)
	require.Len(t, results, len(srcs))
	for i, res := range results {
		assert.True(t, res.OK)
		assert.Equal(t, expected[i], res.Caption, "result %d must correspond to input %d", i, i)
	}
}

func TestCaptionImages_GateNeverExceedsMaxConcurrent(t *testing.T) {
	stub := &stubProvider{delay: 50 * time.Millisecond}
	cfg := testConfig()
	cfg.MaxConcurrent = 2
	c := newTestCaptioner(t, cfg, stub)

	srcs := make([]imaging.Source, 5)
	for i := range srcs {
		srcs[i] = testSource(8)
	}

	results := c.CaptionImages(context.Background(), srcs)
	require.Len(t, results, 5)
	assert.LessOrEqual(t, stub.observedMaxActive(), 2,
		"at most max_concurrent calls may be in flight")
	assert.Equal(t, 5, stub.callCount())
}

func TestCaptionImages_OneFailureDoesNotAffectSiblings(t *testing.T) {
	bad := testSource(7)
	good1 := testSource(8)
	good2 := testSource(9)

	stub := &stubProvider{
		failForData: map[string]bool{encodedData(t, bad): true},
		captionFunc: func(img *imaging.EncodedImage) string { return "ok" },
	}
	cfg := testConfig()
	cfg.MaxRetries = 1
	cfg.BackoffUnit = time.Millisecond
	c := newTestCaptioner(t, cfg, stub)

	results := c.CaptionImages(context.Background(), []imaging.Source{good1, bad, good2})
	require.Len(t, results, 3)

	assert.True(t, results[0].OK)
	assert.Equal(t, "ok", results[0].Caption)
	assert.True(t, results[2].OK)
	assert.Equal(t, "ok", results[2].Caption)

	assert.False(t, results[1].OK)
	assert.Equal(t, 0.0, results[1].Confidence)
	assert.Contains(t, results[1].Caption, "Error:")
}

func TestCaptionImages_MixedEncodingFailures(t *testing.T) {
	stub := &stubProvider{}
	c := newTestCaptioner(t, testConfig(), stub)

	srcs := []imaging.Source{
		testSource(8),
		imaging.FromBuffer(nil, 2, 2, imaging.OrderRGB), // 编码必然失败
		testSource(8),
	}

	results := c.CaptionImages(context.Background(), srcs)
	require.Len(t, results, 3)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.True(t, results[2].OK)
	assert.Equal(t, 2, stub.callCount(), "the unencodable item never reaches the provider")
}
