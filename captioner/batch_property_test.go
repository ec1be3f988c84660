package captioner

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/BaSui01/captionflow/imaging"
)

// 批量编排的核心不变式：对任意 N ≥ 0 与任意失败组合，
// 结果集长度恒为 N，且 results[i] 与 srcs[i] 一一对应。
func TestCaptionImages_LengthAndOrderInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "batchSize")
		maxConcurrent := rapid.IntRange(1, 4).Draw(rt, "maxConcurrent")

		stub := &stubProvider{
			jitter:      3 * time.Millisecond,
			captionFunc: func(img *imaging.EncodedImage) string { return img.Data },
		}

		cfg := testConfig()
		cfg.MaxConcurrent = maxConcurrent
		cfg.MaxRetries = 0
		c, err := New(cfg, zap.NewNop(), withProvider(stub))
		if err != nil {
			rt.Fatalf("New: %v", err)
		}

		srcs := make([]imaging.Source, n)
		expected := make([]string, n)
		failed := make([]bool, n)
		stub.failForData = map[string]bool{}
		for i := range srcs {
			// 宽度决定编码产物，作为逐项身份
			w := 4 + i
			srcs[i] = testSource(w)
			data, encErr := imaging.NewEncoder(0).Encode(srcs[i])
			if encErr != nil {
				rt.Fatalf("encode: %v", encErr)
			}
			expected[i] = data.Data
			if rapid.Bool().Draw(rt, "fail") {
				stub.failForData[data.Data] = true
				failed[i] = true
			}
		}

		results := c.CaptionImages(context.Background(), srcs)
		if len(results) != n {
			rt.Fatalf("got %d results for %d inputs", len(results), n)
		}
		for i, res := range results {
			if failed[i] {
				if res.OK || res.Confidence != 0.0 || res.TokensUsed != nil || res.CostEstimate != nil {
					rt.Fatalf("result %d: failed item must carry zero confidence and no usage", i)
				}
				continue
			}
			if !res.OK || res.Caption != expected[i] {
				rt.Fatalf("result %d does not correspond to input %d", i, i)
			}
		}
	})
}
