package core

// ScoredExhibit 是对外输出的单条推荐：展品原始字段 + 分数 + 有序解释。
type ScoredExhibit struct {
	Exhibit   *Exhibit `json:"exhibit"`
	Score     float64  `json:"score"`
	RuleScore float64  `json:"ruleScore"`
	SimScore  float64  `json:"simScore"`
	ExtScore  float64  `json:"extScore"`
	Reasons   []string `json:"reasons"`
}

// TourResult 是一次推荐请求的最终输出。
//
// 不变式：
//   - Selected 的时长合计（TimeUsed）不超过 TimeBudget
//   - Ranked 按融合分降序，同分保持目录输入顺序（稳定）
//   - Ranked 中所有条目的融合分 > 0（非正分在融合阶段即被剔除）
type TourResult struct {
	Floor      Floor           `json:"floor"`
	TimeUsed   float64         `json:"timeUsed"`
	TimeBudget float64         `json:"timeBudget"`
	Selected   []ScoredExhibit `json:"selected"`
	Ranked     []ScoredExhibit `json:"ranked"`
}

// ScoredView 把链路内部的 Item 转成对外的 ScoredExhibit。
func ScoredView(it *Item) ScoredExhibit {
	return ScoredExhibit{
		Exhibit:   it.Exhibit,
		Score:     it.Score,
		RuleScore: it.RuleScore,
		SimScore:  it.SimScore,
		ExtScore:  it.ExtScore,
		Reasons:   it.Reasons,
	}
}
