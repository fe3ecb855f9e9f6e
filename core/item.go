package core

import "github.com/rushteam/tourkit/pkg/utils"

// Item 是推荐链路中的统一承载结构：展品快照 + 各阶段分数 + 解释信息。
// Reasons 面向最终用户展示；Labels 用于链路观测与策略驱动；Score 用于排序决策。
type Item struct {
	Exhibit *Exhibit

	RuleScore float64 // 规则启发分（无界，启发单位）
	SimScore  float64 // 余弦相似度（0-1）
	ExtScore  float64 // 外部语义分（0-1，缺省 0）
	Score     float64 // 融合后的最终分

	// Reasons 是按产生顺序追加的可读解释，只向下游展示，不被重新解析。
	Reasons []string

	// Labels 用于 explain / 观测 / 过滤表达式
	Labels map[string]utils.Label

	// Pos 是展品在目录快照中的原始下标，用于同分时的稳定排序。
	Pos int
}

// NewItem 以目录中的一条展品快照构造 Item。
func NewItem(ex *Exhibit, pos int) *Item {
	return &Item{
		Exhibit: ex,
		Reasons: make([]string, 0, 8),
		Labels:  make(map[string]utils.Label),
		Pos:     pos,
	}
}

// AddReason 追加一条可读解释（保持产生顺序）。
func (it *Item) AddReason(reason string) {
	it.Reasons = append(it.Reasons, reason)
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
