package core

import "context"

// ExternalScore 是外部语义推荐服务返回的单条打分。
type ExternalScore struct {
	ExhibitID string  `json:"id"`
	Score     float64 `json:"score"` // 已归一化到 0-1
}

// ExternalScorer 是外部语义推荐服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（external）实现
//   - best-effort：任何网络错误/超时/畸形响应都返回 ErrExternalUnavailable，
//     调用方必须把它当作 "没有外部信号" 的类型化分支处理，
//     绝不允许它导致整个推荐请求失败
//
// 实现：
//   - external.SemanticClient 实现此接口（HTTP）
type ExternalScorer interface {
	// Name 返回服务名称（用于日志/监控）
	Name() string

	// Score 以画像派生的自由文本 query 请求打分列表，limit 为结果数上限。
	// 服务未就绪/不可达/响应畸形时返回 ErrExternalUnavailable。
	Score(ctx context.Context, query string, limit int) ([]ExternalScore, error)
}

// ErrExternalUnavailable 表示外部推荐服务不可用（含未索引、超时、畸形响应）。
var ErrExternalUnavailable = NewDomainError(ModuleExternal, ErrorCodeUnavailable, "external: semantic recommender unavailable")
