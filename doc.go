// Package tourkit 是展馆行程推荐引擎（Tour Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Filter → Score → Blend → Select）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 多信号融合: 规则启发分 + 向量余弦相似度 + 外部语义分，按向量可用性切换权重组
// - 确定性选择: 时间预算下的单遍贪心选择，同分保持目录输入顺序
package tourkit

import "github.com/rushteam/tourkit/pipeline"

// 轻量 facade：便于用户直接 import "tourkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFilter = pipeline.KindFilter
	KindScore  = pipeline.KindScore
	KindBlend  = pipeline.KindBlend
	KindSelect = pipeline.KindSelect
)
