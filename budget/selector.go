// Package budget 实现时间预算下的贪心行程选择。
package budget

import (
	"context"
	"fmt"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/pkg/utils"
)

// Select 对已按融合分降序排序的候选做单遍贪心选择。
//
// 算法：维护时长累计 total，逐个检查候选，
// 当且仅当 total + duration <= timeBudget 时录取，否则跳过并继续。
//
// 这是 0/1 背包的贪心近似，不保证总价值最优：
// 被跳过的候选不会被回看，即使跳过它能让后面两个更小的高分项都放进来。
// 这是刻意的 简单性/延迟 取舍，选择结果对外可观测，不得 "修复" 为最优背包。
func Select(ranked []*core.Item, timeBudget float64) ([]*core.Item, float64) {
	selected := make([]*core.Item, 0, len(ranked))
	total := 0.0

	for _, it := range ranked {
		if it == nil || it.Exhibit == nil {
			continue
		}
		if total+it.Exhibit.Duration <= timeBudget {
			selected = append(selected, it)
			total += it.Exhibit.Duration
		}
	}
	return selected, total
}

// Node 是选择阶段的 Pipeline Node 形态：截取预算内的候选。
// 上游必须已完成融合排序（blend.Node）。
type Node struct {
	TimeBudget float64
}

func (n *Node) Name() string        { return "select.budget" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindSelect }

func (n *Node) Process(
	_ context.Context,
	vctx *core.VisitContext,
	items []*core.Item,
) ([]*core.Item, error) {
	budget := n.TimeBudget
	if budget <= 0 && vctx != nil && vctx.Profile != nil {
		budget = vctx.Profile.TimeBudget
	}

	selected, total := Select(items, budget)
	for _, it := range selected {
		it.PutLabel("selected", utils.Label{
			Value:  fmt.Sprintf("total=%.1f", total),
			Source: "select",
		})
	}
	return selected, nil
}
