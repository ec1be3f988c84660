// Copyright (c) CaptionFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 CaptionFlow 的全局共享类型定义。

types 是最底层的公共包，不依赖任何内部包，为 imaging、providers、
captioner 等上层模块提供统一的类型契约。

# 核心类型

  - CaptionResult     — 单张图像的描述结果（caption、confidence、token、成本）
  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码、Retryable、Provider 标记

# 错误码约定

  - CONFIGURATION  — 凭据缺失或 Provider 不受支持，永不重试
  - ENCODING       — 图像不可读或像素数据非法，永不重试
  - PROVIDER       — 网络 / 认证 / 响应解析失败，可重试
  - RETRY_EXHAUSTED — 重试次数耗尽后包装最后一个 PROVIDER 错误
*/
package types
