package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/tourkit/catalog"
	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/embedding"
	"github.com/rushteam/tourkit/guard"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/score"
	"github.com/rushteam/tourkit/store"
)

// fakeScorer 是可注入结果/错误的外部打分假实现。
type fakeScorer struct {
	scores []core.ExternalScore
	err    error
}

func (f *fakeScorer) Name() string { return "fake" }
func (f *fakeScorer) Score(_ context.Context, _ string, _ int) ([]core.ExternalScore, error) {
	return f.scores, f.err
}

func familyRequest(budget float64) *guard.Request {
	return &guard.Request{
		Profile: core.VisitorProfile{
			GroupType:  "family",
			GroupSize:  1,
			TimeBudget: budget,
		},
		Floor: core.FloorGround,
	}
}

func groundExhibits() []*core.Exhibit {
	return []*core.Exhibit{
		{ID: "passive-1", Name: "Mineral Hall", Description: "A passive display of minerals", Category: "geology", Duration: 25, Floor: core.FloorGround},
		{ID: "handson-1", Name: "Build a Robot", Description: "Hands-on robot assembly for kids", Category: "robotics", Duration: 10, Floor: core.FloorGround},
	}
}

func TestRecommendFamilyHandsOnFirst(t *testing.T) {
	e := New(catalog.NewMemoryCatalog(groundExhibits()))

	result, err := e.Recommend(context.Background(), "t1", familyRequest(30))
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Ranked) != 2 {
		t.Fatalf("两个展品都应进入排序，实际 %d", len(result.Ranked))
	}
	if result.Ranked[0].Exhibit.ID != "handson-1" {
		t.Errorf("家庭团体下动手展品应排第一，实际 %s", result.Ranked[0].Exhibit.ID)
	}

	// 预算 30：先录取 10 分钟的动手展品，25 分钟的展品放不下（10+25=35）
	if len(result.Selected) != 1 || result.Selected[0].Exhibit.ID != "handson-1" {
		t.Fatalf("应只选中动手展品，实际 %+v", result.Selected)
	}
	if result.TimeUsed != 10 {
		t.Errorf("TimeUsed = %v, 期望 10", result.TimeUsed)
	}
	if result.TimeUsed > result.TimeBudget {
		t.Errorf("选中时长 %v 超出预算 %v", result.TimeUsed, result.TimeBudget)
	}
}

func TestRecommendInterestMatchRanksHigher(t *testing.T) {
	exhibits := []*core.Exhibit{
		{ID: "geo-1", Name: "Rock Cycle", Description: "geology specimens", Category: "geology", Duration: 10, Floor: core.FloorGround},
		{ID: "robo-1", Name: "Arm Lab", Description: "program a robotics arm", Category: "technology", Duration: 10, Floor: core.FloorGround},
	}
	e := New(catalog.NewMemoryCatalog(exhibits))

	req := familyRequest(60)
	req.Profile.GroupType = "adult"
	req.Profile.Interests = []string{"robotics"}

	result, err := e.Recommend(context.Background(), "t2", req)
	if err != nil {
		t.Fatal(err)
	}
	if result.Ranked[0].Exhibit.ID != "robo-1" {
		t.Errorf("robotics 兴趣下 robo-1 应排第一，实际 %s", result.Ranked[0].Exhibit.ID)
	}
	if result.Ranked[0].Score <= result.Ranked[1].Score {
		t.Errorf("兴趣命中者融合分应更高: %v vs %v", result.Ranked[0].Score, result.Ranked[1].Score)
	}
}

func TestRecommendFloorFilter(t *testing.T) {
	exhibits := []*core.Exhibit{
		{ID: "g1", Name: "Ground", Description: "x", Duration: 10, Floor: core.FloorGround},
		{ID: "f1", Name: "First", Description: "x", Duration: 10, Floor: core.FloorFirst},
	}
	e := New(catalog.NewMemoryCatalog(exhibits))

	result, err := e.Recommend(context.Background(), "t3", familyRequest(60))
	if err != nil {
		t.Fatal(err)
	}
	for _, se := range result.Ranked {
		if se.Exhibit.Floor != core.FloorGround {
			t.Errorf("ground 请求不应包含 %s 楼层的展品", se.Exhibit.Floor)
		}
	}

	// 全馆请求两层都进
	req := familyRequest(60)
	req.Floor = core.FloorAll
	result, err = e.Recommend(context.Background(), "t3b", req)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Ranked) != 2 {
		t.Errorf("all 楼层应包含全部展品，实际 %d", len(result.Ranked))
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	e := New(catalog.NewMemoryCatalog(nil))

	result, err := e.Recommend(context.Background(), "t4", familyRequest(30))
	if err != nil {
		t.Fatalf("空目录不是错误: %v", err)
	}
	if len(result.Selected) != 0 || len(result.Ranked) != 0 {
		t.Errorf("空目录应返回空结果: %+v", result)
	}
	if result.TimeUsed != 0 {
		t.Errorf("空结果 TimeUsed 应为 0，实际 %v", result.TimeUsed)
	}
}

func TestRecommendNoVectorRegime(t *testing.T) {
	// 未加载向量索引：融合退到 规则+外部 权重组，规则分为正时结果非空
	e := New(catalog.NewMemoryCatalog(groundExhibits()))

	result, err := e.Recommend(context.Background(), "t5", familyRequest(60))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Ranked) == 0 {
		t.Fatal("无向量索引时仍应产出非空排序")
	}
	for _, se := range result.Ranked {
		if se.Score <= 0 {
			t.Errorf("排序结果中不应有非正融合分: %v", se.Score)
		}
		if se.SimScore != 0 {
			t.Errorf("无索引时相似度分应为 0，实际 %v", se.SimScore)
		}
	}
}

func TestRecommendWithVector(t *testing.T) {
	idx := embedding.NewIndex([]embedding.Record{
		{ExhibitID: "handson-1", Vector: []float64{1, 0}, Category: "robotics"},
		{ExhibitID: "passive-1", Vector: []float64{0, 1}, Category: "geology"},
	})
	e := New(catalog.NewMemoryCatalog(groundExhibits()), WithIndex(idx))

	req := familyRequest(60)
	req.Profile.Interests = []string{"robotics"}
	result, err := e.Recommend(context.Background(), "t6", req)
	if err != nil {
		t.Fatal(err)
	}

	var handsOn *core.ScoredExhibit
	for i := range result.Ranked {
		if result.Ranked[i].Exhibit.ID == "handson-1" {
			handsOn = &result.Ranked[i]
		}
	}
	if handsOn == nil {
		t.Fatal("handson-1 应在排序结果中")
	}
	// robotics 兴趣 → 类别池只含 robotics 向量 → 与自身余弦为 1
	if handsOn.SimScore < 0.99 {
		t.Errorf("SimScore = %v, 期望接近 1", handsOn.SimScore)
	}
}

func TestRecommendWithInjectedPipeline(t *testing.T) {
	// 注入的 Node 链必须整体取代默认链：
	// 链中没有楼层过滤时，其他楼层的展品也应进入排序
	exhibits := []*core.Exhibit{
		{ID: "g1", Name: "Ground", Description: "x", Duration: 10, Floor: core.FloorGround},
		{ID: "f1", Name: "First", Description: "x", Duration: 10, Floor: core.FloorFirst},
	}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{&score.Rule{}}}
	e := New(catalog.NewMemoryCatalog(exhibits), WithPipeline(p))

	result, err := e.Recommend(context.Background(), "t11", familyRequest(60))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Ranked) != 2 {
		t.Fatalf("注入链不含楼层过滤，两层展品都应进入排序，实际 %d", len(result.Ranked))
	}
}

func TestRecommendExternalDegradation(t *testing.T) {
	ctx := context.Background()
	req := familyRequest(30)

	// 外部服务不可用与返回空列表，响应形状必须一致
	broken := New(catalog.NewMemoryCatalog(groundExhibits()),
		WithExternal(&fakeScorer{err: core.ErrExternalUnavailable}))
	empty := New(catalog.NewMemoryCatalog(groundExhibits()),
		WithExternal(&fakeScorer{scores: nil}))

	r1, err := broken.Recommend(ctx, "t7", req)
	if err != nil {
		t.Fatalf("外部失败不应导致请求失败: %v", err)
	}
	r2, err := empty.Recommend(ctx, "t7", familyRequest(30))
	if err != nil {
		t.Fatal(err)
	}

	if len(r1.Ranked) != len(r2.Ranked) || len(r1.Selected) != len(r2.Selected) {
		t.Errorf("降级响应形状应与空外部结果一致: %d/%d vs %d/%d",
			len(r1.Ranked), len(r1.Selected), len(r2.Ranked), len(r2.Selected))
	}
	for i := range r1.Ranked {
		if r1.Ranked[i].ExtScore != 0 {
			t.Errorf("降级时外部分应为 0，实际 %v", r1.Ranked[i].ExtScore)
		}
	}
}

func TestRecommendExternalSignal(t *testing.T) {
	scorer := &fakeScorer{scores: []core.ExternalScore{
		{ExhibitID: "passive-1", Score: 0.95},
	}}
	e := New(catalog.NewMemoryCatalog(groundExhibits()), WithExternal(scorer))

	result, err := e.Recommend(context.Background(), "t8", familyRequest(60))
	if err != nil {
		t.Fatal(err)
	}
	for _, se := range result.Ranked {
		if se.Exhibit.ID == "passive-1" && se.ExtScore != 0.95 {
			t.Errorf("外部分应写入对应展品: %v", se.ExtScore)
		}
	}
}

func TestRecommendThrottled(t *testing.T) {
	clock := core.RealClock{}
	limiter := guard.NewRateLimiter(guard.NewMemoryCounterStore(clock), time.Minute, 1, clock)
	e := New(catalog.NewMemoryCatalog(groundExhibits()), WithLimiter(limiter))
	ctx := context.Background()

	if _, err := e.Recommend(ctx, "same", familyRequest(30)); err != nil {
		t.Fatal(err)
	}
	_, err := e.Recommend(ctx, "same", familyRequest(30))
	if !core.IsThrottled(err) {
		t.Errorf("超限请求应被限流，实际 %v", err)
	}
}

func TestLastResultSlot(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	e := New(catalog.NewMemoryCatalog(groundExhibits()), WithStore(ms))
	ctx := context.Background()

	// 楼层请求不写槽位
	if _, err := e.Recommend(ctx, "t9", familyRequest(30)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LastResult(ctx); !core.IsNotFound(err) {
		t.Errorf("楼层请求后槽位应仍为空，实际 %v", err)
	}

	// 全馆请求写入槽位
	req := familyRequest(30)
	req.Global = true
	want, err := e.Recommend(ctx, "t9b", req)
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.LastResult(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.TimeUsed != want.TimeUsed || len(got.Selected) != len(want.Selected) {
		t.Errorf("槽位内容应为最近一次全馆结果: %+v", got)
	}

	// 清空后 NOT_FOUND
	if err := e.ClearLastResult(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LastResult(ctx); !core.IsNotFound(err) {
		t.Errorf("清空后应为 NOT_FOUND，实际 %v", err)
	}
}

func TestReport(t *testing.T) {
	e := New(catalog.NewMemoryCatalog(groundExhibits()))

	report, err := e.Report(context.Background(), "t10", familyRequest(30))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("报告应覆盖全部候选（不做预算裁剪），实际 %d", len(report.Entries))
	}
	top := report.Entries[0]
	if top.Exhibit.ID != "handson-1" {
		t.Errorf("报告排序应与推荐一致，实际 %s", top.Exhibit.ID)
	}
	if top.Facets.Interactivity != "hands-on" {
		t.Errorf("报告应展开 facet 细节: %+v", top.Facets)
	}
	if top.RuleScore <= 0 || top.Score <= 0 {
		t.Errorf("报告应携带各阶段分数: %+v", top)
	}
}
