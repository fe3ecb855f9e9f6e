package embedding

import (
	"strings"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/pkg/vectormath"
)

// interestCategories 是固定的 兴趣关键词 → 高层类别 查找表。
// 一个关键词可映射多个类别；未命中的关键词不贡献类别。
var interestCategories = map[string][]string{
	"robotics":    {"technology", "robotics"},
	"robot":       {"technology", "robotics"},
	"ai":          {"technology"},
	"computer":    {"technology"},
	"engineering": {"technology"},
	"fossils":     {"earth-science", "geology"},
	"fossil":      {"earth-science", "geology"},
	"rocks":       {"earth-science", "geology"},
	"minerals":    {"earth-science", "geology"},
	"volcano":     {"earth-science", "geology"},
	"space":       {"astronomy", "space"},
	"astronomy":   {"astronomy", "space"},
	"planets":     {"astronomy", "space"},
	"physics":     {"physics"},
	"magnets":     {"physics"},
	"electricity": {"physics"},
	"animals":     {"biology", "nature"},
	"plants":      {"biology", "nature"},
	"dinosaurs":   {"biology", "earth-science"},
	"nature":      {"nature", "environment"},
	"climate":     {"environment"},
	"ecology":     {"environment", "nature"},
	"chemistry":   {"chemistry"},
	"history":     {"history"},
	"archaeology": {"history"},
}

// Vectorizer 把访客的自由文本兴趣映射为画像聚合向量。
//
// 策略：
//  1. 兴趣关键词经固定查找表映射为类别集合
//  2. 对类别命中的展品向量做平均池化
//  3. 无任何命中时退化为全量向量的平均（"平均访客" 向量，而非失败）
//  4. 索引未加载时返回 nil —— 这是融合器切换到 规则+外部 权重组的显式信号
type Vectorizer struct {
	Index *Index
}

// Vectorize 计算画像聚合向量；无索引时返回 nil。
func (v *Vectorizer) Vectorize(profile *core.VisitorProfile) []float64 {
	if v == nil || v.Index.Len() == 0 {
		return nil
	}

	categories := MatchCategories(profile.Interests)
	pool := v.Index.VectorsByCategory(categories)
	if len(pool) == 0 {
		// 全量平均：没有命中类别时用 "平均访客" 向量兜底
		records := v.Index.Records()
		pool = make([][]float64, 0, len(records))
		for _, r := range records {
			pool = append(pool, r.Vector)
		}
	}
	return vectormath.Mean(pool)
}

// MatchCategories 把兴趣关键词映射为去重后的类别集合（保持首次出现顺序）。
func MatchCategories(interests []string) []string {
	seen := make(map[string]bool, 8)
	out := make([]string, 0, 8)
	for _, kw := range interests {
		kw = strings.ToLower(strings.TrimSpace(kw))
		for _, cat := range interestCategories[kw] {
			if !seen[cat] {
				seen[cat] = true
				out = append(out, cat)
			}
		}
	}
	return out
}
