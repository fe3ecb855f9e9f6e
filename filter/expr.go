package filter

import (
	"context"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/pkg/dsl"
)

// Expr 是基于 CEL 表达式的排除过滤器：运营侧用表达式声明硬排除规则。
// 表达式求值为 true 的展品被剔除。
//
// 示例：
//   - `exhibit.duration > 45.0`
//   - `profile.age_band == "child" && exhibit.difficulty == "advanced"`
type Expr struct {
	// Expression 为空时不剔除任何展品。
	Expression string
}

func (f *Expr) Name() string { return "filter.expr" }

func (f *Expr) ShouldFilter(_ context.Context, vctx *core.VisitContext, item *core.Item) (bool, error) {
	if f.Expression == "" {
		return false, nil
	}
	return dsl.NewEval(item, vctx).Evaluate(f.Expression)
}
