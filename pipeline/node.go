package pipeline

import (
	"context"

	"github.com/rushteam/tourkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFilter Kind = "filter" // 硬过滤阶段：剔除不满足约束的展品
	KindScore  Kind = "score"  // 打分阶段：规则分 / 相似度分
	KindBlend  Kind = "blend"  // 融合阶段：多信号加权为单一排序分
	KindSelect Kind = "select" // 选择阶段：预算约束下的贪心录取
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便过滤截断、打分、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		vctx *core.VisitContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
