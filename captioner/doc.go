// Copyright (c) CaptionFlow Authors.
// Licensed under the MIT License.

/*
Package captioner 是 CaptionFlow 的核心客户端：把"描述这张图像"这一
逻辑操作转换为具体厂商的 API 调用，并提供有界并发、指数退避重试和
逐项故障隔离的批量处理。

# 调用路径

	调用方 → Captioner → 批量编排（errgroup 限流）→ 重试控制 →
	Provider 适配器 → imaging 编码 → 外部服务

# 行为契约

  - 每提交一张图像，恰好产出一个 CaptionResult，即使所有重试都失败
  - 批量结果与输入按下标对齐，与完成顺序无关
  - 单项的终态失败（配置 / 编码 / 重试耗尽）不会取消或拖慢其它项
  - 单张同步调用把终态错误原样抛给调用方；只有批量调用做故障隔离
*/
package captioner
