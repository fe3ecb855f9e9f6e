package engine

import (
	"context"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/facet"
	"github.com/rushteam/tourkit/guard"
	"github.com/rushteam/tourkit/pkg/utils"
)

// ReportEntry 是诊断报告里的单个展品：facet 全量展开 + 各阶段分数。
type ReportEntry struct {
	Exhibit   *core.Exhibit          `json:"exhibit"`
	Facets    facet.Facets           `json:"facets"`
	RuleScore float64                `json:"ruleScore"`
	SimScore  float64                `json:"simScore"`
	ExtScore  float64                `json:"extScore"`
	Score     float64                `json:"score"`
	Reasons   []string               `json:"reasons"`
	Labels    map[string]utils.Label `json:"labels,omitempty"`
}

// Report 是单楼层的诊断视图：完整排序结果，不做预算选择。
type Report struct {
	Floor   core.Floor    `json:"floor"`
	Entries []ReportEntry `json:"entries"`
}

// Report 生成诊断报告：与 Recommend 走同一条打分链路（单一事实来源），
// 但跳过贪心选择，并展开每个展品的 facet 细节。
func (e *Engine) Report(ctx context.Context, identity string, req *guard.Request) (*Report, error) {
	if err := e.limiter.Allow(ctx, identity); err != nil {
		return nil, err
	}

	e.enrich(ctx, req)

	vctx, items, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	ranked, err := e.rank(ctx, vctx, items)
	if err != nil {
		return nil, err
	}

	entries := make([]ReportEntry, 0, len(ranked))
	for _, it := range ranked {
		entries = append(entries, ReportEntry{
			Exhibit:   it.Exhibit,
			Facets:    facet.Extract(it.Exhibit),
			RuleScore: it.RuleScore,
			SimScore:  it.SimScore,
			ExtScore:  it.ExtScore,
			Score:     it.Score,
			Reasons:   it.Reasons,
			Labels:    it.Labels,
		})
	}
	return &Report{Floor: req.Floor, Entries: entries}, nil
}
