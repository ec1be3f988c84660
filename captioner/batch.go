package captioner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/captionflow/imaging"
	"github.com/BaSui01/captionflow/types"
)

// CaptionImages 并发描述一批图像。
//
// 扇出受 MaxConcurrent 限制；结果切片长度恒等于输入长度，且
// results[i] 对应 srcs[i]，与完成顺序无关。单项的终态失败被捕获为
// 该项的错误结果（confidence 0，无 token / 成本），绝不影响兄弟项，
// 批量调用本身永远"成功"。
func (c *Captioner) CaptionImages(ctx context.Context, srcs []imaging.Source) []types.CaptionResult {
	results := make([]types.CaptionResult, len(srcs))
	if len(srcs) == 0 {
		return results
	}

	// errgroup.SetLimit 即计数信号量：第 MaxConcurrent+1 个任务
	// 会阻塞到某个在途任务结束
	g := new(errgroup.Group)
	g.SetLimit(c.cfg.MaxConcurrent)

	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			start := time.Now()
			res, err := c.caption(ctx, src)
			if err != nil {
				c.logger.Error("caption failed",
					zap.Int("index", i),
					zap.Error(err),
				)
				results[i] = types.NewFailedResult(err, c.cfg.Provider, c.cfg.Model, time.Since(start))
				return nil // 逐项隔离：不向 errgroup 传播
			}
			results[i] = *res
			return nil
		})
	}

	// 所有 goroutine 都返回 nil，此处仅作同步屏障
	_ = g.Wait()
	return results
}
