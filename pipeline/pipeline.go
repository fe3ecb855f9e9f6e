package pipeline

import (
	"context"

	"github.com/rushteam/tourkit/core"
)

// Pipeline 是 tourkit 的核心抽象：把推荐逻辑拆成可组合的 Node 链
// （Filter → Score → Blend → Select）。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	vctx *core.VisitContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, vctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
