// Copyright (c) CaptionFlow Authors.
// Licensed under the MIT License.

/*
Package providers 定义视觉描述 Provider 的统一接口与配置。

每个受支持的厂商在各自的子包中实现 Provider 接口（anthropic、openai、
gemini），负责构造厂商特定的请求协议、解析响应并提取 caption 文本、
token 用量与成本估算。

所有厂商级失败（网络错误、认证拒绝、响应格式异常）都被归一化为
types.ErrProvider 错误，上游重试逻辑因此无需感知任何厂商差异。
*/
package providers
