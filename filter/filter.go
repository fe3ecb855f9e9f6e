package filter

import (
	"context"

	"github.com/rushteam/tourkit/core"
)

// Filter 是硬过滤器的抽象接口，用于判断一个展品是否应该被剔除。
// 返回 true 表示剔除，false 表示保留。
// 硬过滤是前置约束，不是打分惩罚：被剔除的展品不进入任何打分阶段。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被剔除
	ShouldFilter(ctx context.Context, vctx *core.VisitContext, item *core.Item) (bool, error)
}
