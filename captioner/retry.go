package captioner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/captionflow/imaging"
	"github.com/BaSui01/captionflow/internal/metrics"
	"github.com/BaSui01/captionflow/types"
)

// caption 驱动单个请求走完整个生命周期：
// 编码（单发，不重试）→ 发送 → 失败则指数退避重试 → 成功或终态失败。
// 耗时从首次编码计到最后一次尝试结束，退避等待计入在内。
func (c *Captioner) caption(ctx context.Context, src imaging.Source) (*types.CaptionResult, error) {
	start := time.Now()
	result, err := c.attemptAll(ctx, src, start)
	elapsed := time.Since(start)

	if err != nil {
		c.collector.RecordCaption(c.cfg.Provider, metrics.OutcomeFailure, elapsed)
		return nil, err
	}
	c.collector.RecordCaption(c.cfg.Provider, metrics.OutcomeSuccess, elapsed)
	c.collector.RecordUsage(c.cfg.Provider, result.TokensUsed, result.CostEstimate)
	return result, nil
}

func (c *Captioner) attemptAll(ctx context.Context, src imaging.Source, start time.Time) (*types.CaptionResult, error) {
	log := c.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("provider", c.cfg.Provider),
	)

	// 编码是确定性的：失败重试毫无意义
	img, err := c.enc.Encode(src)
	if err != nil {
		log.Debug("image encoding failed", zap.Error(err))
		return nil, err
	}
	log.Debug("image encoded", zap.Int("payload_bytes", img.ByteSize))

	var lastErr error
	attempts := c.cfg.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, types.NewProviderError(c.cfg.Provider, "rate limit wait interrupted").
					WithRetryable(false).
					WithCause(err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		res, err := c.provider.Caption(callCtx, img, captionPrompt)
		cancel()

		if err == nil {
			elapsed := time.Since(start)
			log.Debug("caption generated",
				zap.Int("attempt", attempt),
				zap.Duration("elapsed", elapsed),
			)
			return &types.CaptionResult{
				Caption:        res.Caption,
				Confidence:     1.0, // 厂商不自报不确定性
				ProcessingTime: elapsed.Seconds(),
				Provider:       c.cfg.Provider,
				Model:          c.cfg.Model,
				TokensUsed:     res.TokensUsed,
				CostEstimate:   res.CostEstimate,
				OK:             true,
			}, nil
		}

		// 配置 / 编码类错误是确定性的，立即终态
		if !types.IsRetryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		delay := c.backoff(attempt)
		log.Warn("provider call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.cfg.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		c.collector.RecordRetry(c.cfg.Provider)

		select {
		case <-ctx.Done():
			return nil, types.NewProviderError(c.cfg.Provider, "retry wait interrupted").
				WithRetryable(false).
				WithCause(ctx.Err())
		case <-time.After(delay):
		}
	}

	log.Warn("retry budget exhausted",
		zap.Int("attempts", attempts),
		zap.Error(lastErr),
	)
	return nil, types.NewRetryExhaustedError(attempts, lastErr)
}

// backoff 计算第 attempt 次失败后的等待时长：BackoffUnit * 2^attempt。
func (c *Captioner) backoff(attempt int) time.Duration {
	return c.cfg.BackoffUnit * time.Duration(1<<uint(attempt))
}
