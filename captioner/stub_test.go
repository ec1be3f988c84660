package captioner

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BaSui01/captionflow/imaging"
	"github.com/BaSui01/captionflow/providers"
	"github.com/BaSui01/captionflow/types"
)

// stubProvider 是测试用 Provider：支持错误注入、延迟与并发观测。
type stubProvider struct {
	mu        sync.Mutex
	calls     int
	active    int32
	maxActive int32

	delay       time.Duration
	jitter      time.Duration // 每次调用额外随机延迟，模拟乱序完成
	failFirst   int           // 前 n 次调用返回可重试错误
	failAlways  bool
	err         error // 注入的错误，默认可重试的 provider 错误
	failForData map[string]bool

	captionFunc func(img *imaging.EncodedImage) string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Caption(ctx context.Context, img *imaging.EncodedImage, prompt string) (*providers.Result, error) {
	cur := atomic.AddInt32(&s.active, 1)
	defer atomic.AddInt32(&s.active, -1)
	for {
		max := atomic.LoadInt32(&s.maxActive)
		if cur <= max || atomic.CompareAndSwapInt32(&s.maxActive, max, cur) {
			break
		}
	}

	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()

	wait := s.delay
	if s.jitter > 0 {
		wait += time.Duration(rand.Int63n(int64(s.jitter)))
	}
	if wait > 0 {
		select {
		case <-ctx.Done():
			return nil, types.NewProviderError(s.Name(), "stub timeout").WithCause(ctx.Err())
		case <-time.After(wait):
		}
	}

	if s.failAlways || n <= s.failFirst || s.failForData[img.Data] {
		if s.err != nil {
			return nil, s.err
		}
		return nil, types.NewProviderError(s.Name(), "stub failure")
	}

	caption := "a stub caption"
	if s.captionFunc != nil {
		caption = s.captionFunc(img)
	}
	tokens := 100
	cost := 0.001
	return &providers.Result{Caption: caption, TokensUsed: &tokens, CostEstimate: &cost}, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) (*providers.HealthStatus, error) {
	return &providers.HealthStatus{Healthy: true, Latency: time.Millisecond}, nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubProvider) observedMaxActive() int {
	return int(atomic.LoadInt32(&s.maxActive))
}
