// Package score 提供打分阶段的 Pipeline Node：规则启发分与向量相似度分。
package score

import (
	"context"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/facet"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/pkg/utils"
	"github.com/rushteam/tourkit/rule"
)

// Rule 是规则打分 Node：对每个展品提取 facet 并计算规则启发分。
// - 写入 item.RuleScore 与有序 Reasons
// - 写入 labels：interactivity / depth_level（供观测与表达式过滤）
type Rule struct{}

func (n *Rule) Name() string        { return "score.rule" }
func (n *Rule) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *Rule) Process(
	_ context.Context,
	vctx *core.VisitContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if vctx == nil || vctx.Profile == nil || len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil || it.Exhibit == nil {
			continue
		}
		f := facet.Extract(it.Exhibit)
		s, reasons := rule.Score(vctx.Profile, it.Exhibit, f)
		it.RuleScore = s
		for _, r := range reasons {
			it.AddReason(r)
		}
		it.PutLabel("interactivity", utils.Label{Value: f.Interactivity, Source: "score"})
		it.PutLabel("depth_level", utils.Label{Value: f.DepthLevel, Source: "score"})
	}
	return items, nil
}
