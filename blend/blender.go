// Package blend 把规则分、向量相似度、外部语义分融合为单一排序分。
package blend

import (
	"context"
	"sort"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/pkg/utils"
)

// Weights 是融合权重配置（可经 YAML / 测试覆写）。
// 两套权重组，按画像向量是否存在切换：
//   - WithVector:    blended = Rule·rule + Sim·max(0, cos·100) + Ext·ext100
//   - WithoutVector: blended = Rule·rule + Ext·ext100
//
// 外部分先钳到 [0,1] 再放大到与规则分同量级（×100）参与加权。
type Weights struct {
	WithVector    Regime `yaml:"with_vector" json:"with_vector"`
	WithoutVector Regime `yaml:"without_vector" json:"without_vector"`
}

// Regime 是单套权重组。
type Regime struct {
	Rule float64 `yaml:"rule" json:"rule"`
	Sim  float64 `yaml:"sim" json:"sim"`
	Ext  float64 `yaml:"ext" json:"ext"`
}

// DefaultWeights 返回默认权重。
func DefaultWeights() Weights {
	return Weights{
		WithVector:    Regime{Rule: 0.35, Sim: 0.45, Ext: 0.20},
		WithoutVector: Regime{Rule: 0.70, Ext: 0.30},
	}
}

// Blend 计算融合分并返回按分降序的稳定排序结果。
//
// 约定：
//   - hasVector 为 false 时使用 无向量 权重组（SimScore 被整体忽略）
//   - 融合分 <= 0 的条目被整体剔除：非正分意味着 "不可推荐"，不只是低排名
//   - 同分条目按目录输入顺序（Item.Pos）决胜，保证选择的确定性
func Blend(items []*core.Item, hasVector bool, w Weights) []*core.Item {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		ext := clamp01(it.ExtScore) * 100
		if hasVector {
			sim := it.SimScore * 100
			if sim < 0 {
				sim = 0
			}
			it.Score = w.WithVector.Rule*it.RuleScore + w.WithVector.Sim*sim + w.WithVector.Ext*ext
		} else {
			it.Score = w.WithoutVector.Rule*it.RuleScore + w.WithoutVector.Ext*ext
		}

		if it.Score <= 0 {
			continue
		}
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Node 是融合阶段的 Pipeline Node 形态。
type Node struct {
	Weights Weights
}

func (n *Node) Name() string        { return "blend.weighted" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindBlend }

func (n *Node) Process(
	_ context.Context,
	vctx *core.VisitContext,
	items []*core.Item,
) ([]*core.Item, error) {
	hasVector := vctx != nil && vctx.ProfileVector != nil
	out := Blend(items, hasVector, n.Weights)
	for _, it := range out {
		regime := "without_vector"
		if hasVector {
			regime = "with_vector"
		}
		it.PutLabel("blend_regime", utils.Label{Value: regime, Source: "blend"})
	}
	return out, nil
}
