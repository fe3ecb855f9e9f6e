// Package engine 编排一次完整的行程推荐：
// 守卫 → 硬过滤 → 本地打分（规则 + 相似度）∥ 外部语义打分 → 融合 → 预算选择。
package engine

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/tourkit/blend"
	"github.com/rushteam/tourkit/budget"
	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/embedding"
	"github.com/rushteam/tourkit/feast"
	"github.com/rushteam/tourkit/filter"
	"github.com/rushteam/tourkit/guard"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/score"
)

// LastResultKey 是 last-result 槽位的存储 key：
// 最近一次全馆行程结果，供地图渲染等协作方跨组件读取。
const LastResultKey = "tour:last"

// DefaultExternalTimeout 是外部语义调用的有界超时。
// 外部服务慢或不可达时快速失败，绝不拖垮整个请求。
const DefaultExternalTimeout = 3 * time.Second

// DefaultExternalLimit 是外部打分请求的结果数上限。
const DefaultExternalLimit = 20

// Engine 是推荐引擎的编排入口。
// 除限流计数和 last-result 槽位外，单次请求不修改任何共享状态；
// 向量索引启动时加载一次，之后只读，可无锁并发访问。
type Engine struct {
	catalog    core.Catalog
	index      *embedding.Index
	vectorizer *embedding.Vectorizer
	external   core.ExternalScorer
	limiter    *guard.RateLimiter
	store      core.Store
	enricher   *feast.Enricher
	weights    blend.Weights
	exclude    []string
	local      *pipeline.Pipeline

	externalTimeout time.Duration
	externalLimit   int

	log zerolog.Logger
}

// Option 引擎配置选项
type Option func(*Engine)

// WithIndex 设置向量索引（可为 nil：相似度整体跳过）
func WithIndex(idx *embedding.Index) Option {
	return func(e *Engine) {
		e.index = idx
		e.vectorizer = &embedding.Vectorizer{Index: idx}
	}
}

// WithExternal 设置外部语义推荐服务
func WithExternal(scorer core.ExternalScorer) Option {
	return func(e *Engine) { e.external = scorer }
}

// WithLimiter 设置请求限流器
func WithLimiter(limiter *guard.RateLimiter) Option {
	return func(e *Engine) { e.limiter = limiter }
}

// WithStore 设置 last-result 槽位的存储后端
func WithStore(s core.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithEnricher 设置画像补全器
func WithEnricher(en *feast.Enricher) Option {
	return func(e *Engine) { e.enricher = en }
}

// WithWeights 覆写融合权重
func WithWeights(w blend.Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithExcludeRules 设置运营侧的表达式硬排除规则
func WithExcludeRules(rules []string) Option {
	return func(e *Engine) { e.exclude = rules }
}

// WithPipeline 用配置驱动的 Node 链覆写默认的本地打分链（过滤 + 打分阶段）。
// 融合与预算选择仍由引擎执行；链路通常经 pipeline.Config + config.DefaultFactory 构建。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.local = p }
}

// WithExternalTimeout 设置外部调用超时
func WithExternalTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.externalTimeout = d
		}
	}
}

// WithLogger 设置日志器
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New 创建推荐引擎。catalog 必选，其余协作方按需注入。
func New(catalog core.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:         catalog,
		weights:         blend.DefaultWeights(),
		externalTimeout: DefaultExternalTimeout,
		externalLimit:   DefaultExternalLimit,
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend 执行一次完整的行程推荐。
//
// 错误语义：
//   - 限流 → THROTTLED（带 RetryAfter），不做任何计算
//   - 目录为空 / 全部被硬过滤 → 正常返回空选择，TimeUsed=0，不是错误
//   - 外部服务失败 → 静默降级为 规则+相似度，响应形状不变
//   - 槽位写入失败 → 记日志，不影响主响应
func (e *Engine) Recommend(ctx context.Context, identity string, req *guard.Request) (*core.TourResult, error) {
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

	selected, timeUsed := budget.Select(ranked, req.Profile.TimeBudget)

	result := &core.TourResult{
		Floor:      req.Floor,
		TimeUsed:   timeUsed,
		TimeBudget: req.Profile.TimeBudget,
		Selected:   scoredViews(selected),
		Ranked:     scoredViews(ranked),
	}

	if vctx.AllFloors() {
		e.persistLast(ctx, result)
	}
	return result, nil
}

// prepare 读取目录快照并构建请求上下文与候选集。
func (e *Engine) prepare(ctx context.Context, req *guard.Request) (*core.VisitContext, []*core.Item, error) {
	exhibits, err := e.catalog.Snapshot(ctx)
	if err != nil {
		return nil, nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "engine: catalog snapshot: "+err.Error())
	}

	vctx := &core.VisitContext{
		Profile: &req.Profile,
		Floor:   req.Floor,
		Global:  req.Global,
	}
	if e.vectorizer != nil {
		vctx.ProfileVector = e.vectorizer.Vectorize(&req.Profile)
	}

	items := make([]*core.Item, 0, len(exhibits))
	for i, ex := range exhibits {
		if ex == nil {
			continue
		}
		items = append(items, core.NewItem(ex, i))
	}
	return vctx, items, nil
}

// rank 并发执行本地打分与外部打分，随后融合排序。
// 两路之间无顺序依赖；外部一路永远降级，不会让 errgroup 失败。
func (e *Engine) rank(ctx context.Context, vctx *core.VisitContext, items []*core.Item) ([]*core.Item, error) {
	var (
		local     []*core.Item
		extScores map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := e.localPipeline().Run(gctx, vctx, items)
		if err != nil {
			return err
		}
		local = out
		return nil
	})
	g.Go(func() error {
		extScores = e.externalScores(gctx, vctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "engine: pipeline: "+err.Error())
	}

	for _, it := range local {
		if s, ok := extScores[it.Exhibit.ID]; ok {
			it.ExtScore = s
		}
	}

	blendNode := &blend.Node{Weights: e.weights}
	ranked, err := blendNode.Process(ctx, vctx, local)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "engine: blend: "+err.Error())
	}
	return ranked, nil
}

// localPipeline 返回本地打分链：默认组装 硬过滤 → 规则分 → 相似度分，
// 配置驱动时使用注入的 Node 链。
func (e *Engine) localPipeline() *pipeline.Pipeline {
	if e.local != nil {
		return e.local
	}

	filters := []filter.Filter{&filter.Floor{}, &filter.Duration{}}
	for _, expr := range e.exclude {
		filters = append(filters, &filter.Expr{Expression: expr})
	}

	nodes := []pipeline.Node{
		&filter.Node{Filters: filters},
		&score.Rule{},
	}
	if e.index != nil {
		nodes = append(nodes, &score.Similarity{Index: e.index})
	}
	return &pipeline.Pipeline{Nodes: nodes}
}

// externalScores 发起 best-effort 外部打分，失败一律返回空集。
func (e *Engine) externalScores(ctx context.Context, vctx *core.VisitContext) map[string]float64 {
	if e.external == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.externalTimeout)
	defer cancel()

	scores, err := e.external.Score(callCtx, externalQuery(vctx.Profile), e.externalLimit)
	if err != nil {
		// 不可用就是 "没有外部信号"，降级继续
		e.log.Warn().Err(err).Str("scorer", e.external.Name()).Msg("外部语义打分降级")
		return nil
	}

	out := make(map[string]float64, len(scores))
	for _, s := range scores {
		out[s.ExhibitID] = s.Score
	}
	return out
}

// externalQuery 从画像派生自由文本查询。
func externalQuery(p *core.VisitorProfile) string {
	parts := make([]string, 0, len(p.Interests)+1)
	parts = append(parts, p.Interests...)
	if p.GroupType != "" {
		parts = append(parts, p.GroupType)
	}
	if len(parts) == 0 {
		return "museum exhibit highlights"
	}
	return strings.Join(parts, " ")
}

// enrich 尝试从特征存储补全稀疏画像；失败只记日志。
func (e *Engine) enrich(ctx context.Context, req *guard.Request) {
	if e.enricher == nil || req.VisitorID == "" {
		return
	}
	if err := e.enricher.Enrich(ctx, req.VisitorID, &req.Profile); err != nil {
		e.log.Warn().Err(err).Str("visitor", req.VisitorID).Msg("画像补全失败，按原始画像继续")
	}
	req.Profile = req.Profile.Normalize()
}

// persistLast 把全馆结果写入 last-result 槽位（last-writer-wins）。
func (e *Engine) persistLast(ctx context.Context, result *core.TourResult) {
	if e.store == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		e.log.Error().Err(err).Msg("last-result 序列化失败")
		return
	}
	if err := e.store.Set(ctx, LastResultKey, data); err != nil {
		e.log.Error().Err(err).Str("store", e.store.Name()).Msg("last-result 槽位写入失败")
	}
}

// LastResult 读取最近一次全馆行程结果；槽位为空返回 NOT_FOUND。
func (e *Engine) LastResult(ctx context.Context) (*core.TourResult, error) {
	if e.store == nil {
		return nil, core.ErrStoreNotFound
	}
	data, err := e.store.Get(ctx, LastResultKey)
	if err != nil {
		return nil, err
	}
	var result core.TourResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "engine: decode last result: "+err.Error())
	}
	return &result, nil
}

// ClearLastResult 清空 last-result 槽位。
func (e *Engine) ClearLastResult(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Delete(ctx, LastResultKey)
}

func scoredViews(items []*core.Item) []core.ScoredExhibit {
	out := make([]core.ScoredExhibit, 0, len(items))
	for _, it := range items {
		out = append(out, core.ScoredView(it))
	}
	return out
}
