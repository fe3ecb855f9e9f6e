// Package builders 在 init 中注册内置 Node 的配置构建器。
// 入口处 import _ "github.com/rushteam/tourkit/config/builders" 即可启用配置驱动。
package builders

import (
	"fmt"

	"github.com/rushteam/tourkit/blend"
	"github.com/rushteam/tourkit/budget"
	"github.com/rushteam/tourkit/config"
	"github.com/rushteam/tourkit/embedding"
	"github.com/rushteam/tourkit/filter"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/pkg/conv"
	"github.com/rushteam/tourkit/score"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("score.rule", BuildRuleNode)
	config.Register("score.similarity", BuildSimilarityNode)
	config.Register("blend.weighted", BuildBlendNode)
	config.Register("select.budget", BuildSelectNode)
}

// BuildFilterNode 构建硬过滤 Node。
//
// 配置：
//
//	floor: true                # 启用楼层过滤（默认 true）
//	max_duration: 120          # 时长离群上限（分钟，<=0 用默认）
//	exclude:                   # CEL 硬排除表达式列表
//	  - 'exhibit.duration > 45.0'
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filters := make([]filter.Filter, 0, 4)
	if conv.ConfigGet(cfg, "floor", true) {
		filters = append(filters, &filter.Floor{})
	}
	filters = append(filters, &filter.Duration{
		MaxDuration: conv.ConfigGetFloat64(cfg, "max_duration", 0),
	})
	for _, expr := range conv.SliceAnyToString(cfg["exclude"]) {
		filters = append(filters, &filter.Expr{Expression: expr})
	}
	return &filter.Node{Filters: filters}, nil
}

// BuildRuleNode 构建规则打分 Node（无配置项）。
func BuildRuleNode(_ map[string]any) (pipeline.Node, error) {
	return &score.Rule{}, nil
}

// BuildSimilarityNode 构建相似度打分 Node。
//
// 配置：
//
//	embedding_path: ./data/embeddings.json
//
// 文件缺失不是错误：返回的 Node 在空索引下整体跳过。
func BuildSimilarityNode(cfg map[string]any) (pipeline.Node, error) {
	path := conv.ConfigGet(cfg, "embedding_path", "")
	if path == "" {
		return nil, fmt.Errorf("embedding_path is required")
	}
	idx, err := embedding.LoadIndex(path)
	if err != nil {
		return nil, fmt.Errorf("load embedding index: %w", err)
	}
	return &score.Similarity{Index: idx}, nil
}

// BuildBlendNode 构建融合 Node。
//
// 配置（缺省使用默认权重）：
//
//	with_vector:    {rule: 0.35, sim: 0.45, ext: 0.20}
//	without_vector: {rule: 0.70, ext: 0.30}
func BuildBlendNode(cfg map[string]any) (pipeline.Node, error) {
	w := blend.DefaultWeights()
	if m, ok := cfg["with_vector"].(map[string]any); ok {
		w.WithVector = parseRegime(m, w.WithVector)
	}
	if m, ok := cfg["without_vector"].(map[string]any); ok {
		w.WithoutVector = parseRegime(m, w.WithoutVector)
	}
	return &blend.Node{Weights: w}, nil
}

func parseRegime(m map[string]any, def blend.Regime) blend.Regime {
	return blend.Regime{
		Rule: conv.ConfigGetFloat64(m, "rule", def.Rule),
		Sim:  conv.ConfigGetFloat64(m, "sim", def.Sim),
		Ext:  conv.ConfigGetFloat64(m, "ext", def.Ext),
	}
}

// BuildSelectNode 构建预算选择 Node。
//
// 配置：
//
//	time_budget: 60   # 分钟；<=0 时用请求画像的预算
func BuildSelectNode(cfg map[string]any) (pipeline.Node, error) {
	return &budget.Node{
		TimeBudget: conv.ConfigGetFloat64(cfg, "time_budget", 0),
	}, nil
}
