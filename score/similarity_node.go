package score

import (
	"context"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/embedding"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/pkg/vectormath"
)

// Similarity 是相似度打分 Node：画像向量与展品向量的余弦相似度。
//
// 画像向量（vctx.ProfileVector）为 nil 时整体跳过：
// 索引缺失是受支持的状态，融合阶段会据此切换权重组。
type Similarity struct {
	Index *embedding.Index
}

func (n *Similarity) Name() string        { return "score.similarity" }
func (n *Similarity) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *Similarity) Process(
	_ context.Context,
	vctx *core.VisitContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if vctx == nil || vctx.ProfileVector == nil || n.Index.Len() == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil || it.Exhibit == nil {
			continue
		}
		vec, ok := n.Index.Vector(it.Exhibit.ID)
		if !ok {
			continue
		}
		it.SimScore = vectormath.Cosine(vctx.ProfileVector, vec)
	}
	return items, nil
}
