// Copyright (c) CaptionFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 CaptionFlow 命令行程序入口。

# 概述

cmd/captionflow 是 CaptionFlow 的可执行入口，对一个或多个本地图像文件
批量生成描述。程序支持 YAML 配置文件加载、环境变量覆盖、结构化日志
（zap）以及可选的 Prometheus 指标端点。

# 主要能力

  - 子命令：caption（批量标注图像文件）、health（探测厂商可达性）、
    version、help
  - 配置优先级：默认值 → YAML 文件 → CAPTIONFLOW_* 环境变量 → 命令行参数
  - 指标端点：启用后在独立端口暴露 /metrics（Prometheus）
  - 退出码：任意一项标注失败时以非零码退出
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
