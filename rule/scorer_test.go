package rule

import (
	"strings"
	"testing"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/facet"
)

func scoreOf(t *testing.T, p core.VisitorProfile, ex core.Exhibit) (float64, []string) {
	t.Helper()
	np := p.Normalize()
	return Score(&np, &ex, facet.Extract(&ex))
}

func TestScoreFamilyHandsOn(t *testing.T) {
	p := core.VisitorProfile{GroupType: "family", TimeBudget: 30}
	handsOn := core.Exhibit{
		Name: "Robot Lab", Description: "hands-on robotics fun",
		Category: "technology", Duration: 10, Floor: core.FloorGround,
	}
	passive := core.Exhibit{
		Name: "Mineral Hall", Description: "observational mineral display",
		Category: "geology", Duration: 25, Floor: core.FloorGround,
	}

	hs, hr := scoreOf(t, p, handsOn)
	ps, _ := scoreOf(t, p, passive)

	if hs <= ps {
		t.Errorf("家庭团体下 hands-on 展品应得分更高: %v vs %v", hs, ps)
	}
	if !containsSubstring(hr, "hands-on") {
		t.Errorf("解释应包含 hands-on 加分: %v", hr)
	}
}

func TestScoreInterestMatch(t *testing.T) {
	p := core.VisitorProfile{Interests: []string{"robotics"}, TimeBudget: 60}
	robo := core.Exhibit{Name: "Arm", Description: "industrial robotics demo", Duration: 5}
	geo := core.Exhibit{Name: "Rocks", Description: "rare mineral collection", Duration: 5}

	rs, rr := scoreOf(t, p, robo)
	gs, _ := scoreOf(t, p, geo)

	if rs <= gs {
		t.Errorf("兴趣命中的展品应得分更高: %v vs %v", rs, gs)
	}
	if !containsSubstring(rr, `matches interest "robotics"`) {
		t.Errorf("解释应包含兴趣匹配: %v", rr)
	}
}

func TestScoreMultipleInterestsNotCapped(t *testing.T) {
	// 多个兴趣各自贡献，不封顶
	one := core.VisitorProfile{Interests: []string{"volcano"}, TimeBudget: 60}
	two := core.VisitorProfile{Interests: []string{"volcano", "earthquake"}, TimeBudget: 60}
	ex := core.Exhibit{
		Name: "Earth Power", Description: "volcano and earthquake simulation", Duration: 5,
	}

	s1, _ := scoreOf(t, one, ex)
	s2, _ := scoreOf(t, two, ex)
	if s2 != s1+interestMatchBonus {
		t.Errorf("第二个兴趣应额外加 %v 分: %v vs %v", interestMatchBonus, s1, s2)
	}
}

func TestScoreTechIrrelevantMalus(t *testing.T) {
	// 技术向访客对 nature/history 主题是负向信号，不是过滤
	p := core.VisitorProfile{GroupType: "student", TimeBudget: 60}
	history := core.Exhibit{
		Name: "Ancient Hall", Description: "ancient civilization heritage", Duration: 5,
	}
	neutral := core.Exhibit{
		Name: "Lobby", Description: "a large painting", Duration: 5,
	}

	hs, hr := scoreOf(t, p, history)
	ns, _ := scoreOf(t, p, neutral)
	if hs >= ns {
		t.Errorf("history 主题对技术向访客应减分: %v vs %v", hs, ns)
	}
	if hs <= 0 {
		t.Errorf("减分不是过滤，分数仍应为正: %v", hs)
	}
	if !containsSubstring(hr, "less relevant") {
		t.Errorf("解释应包含减分原因: %v", hr)
	}
}

func TestScoreTimeFit(t *testing.T) {
	tests := []struct {
		name      string
		budget    float64
		groupSize int
		duration  float64
		fits      bool
	}{
		{"预算内", 30, 1, 20, true},
		{"超预算", 30, 1, 40, false},
		{"人均预算", 30, 6, 6, false}, // max(5, 30/6)=5 < 6
		{"下限保护", 4, 1, 5, true},   // max(5, 4)=5
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := core.VisitorProfile{TimeBudget: tt.budget, GroupSize: tt.groupSize}
			ex := core.Exhibit{Name: "X", Description: "y", Duration: tt.duration}
			_, reasons := scoreOf(t, p, ex)
			got := containsSubstring(reasons, "time budget")
			if got != tt.fits {
				t.Errorf("时长适配判定错误: 期望 %v, 解释 %v", tt.fits, reasons)
			}
		})
	}
}

func TestScoreRatingCapped(t *testing.T) {
	p := core.VisitorProfile{TimeBudget: 60}
	low := core.Exhibit{Name: "A", Description: "z", Duration: 5, Rating: 3}
	high := core.Exhibit{Name: "A", Description: "z", Duration: 5, Rating: 5}

	ls, _ := scoreOf(t, p, low)
	hs, _ := scoreOf(t, p, high)
	if hs-ls != ratingBonusCeiling-3*ratingBonusPerPoint {
		t.Errorf("评分加成应封顶在 %v: 低 %v 高 %v", ratingBonusCeiling, ls, hs)
	}
}

func TestScoreAdditiveOrderIndependent(t *testing.T) {
	// 各加减分独立求和；同一输入必须得到同一分数与同一解释顺序
	p := core.VisitorProfile{
		GroupType: "family", Interests: []string{"robotics"},
		TimeBudget: 45, NoiseTolerance: "low",
	}
	ex := core.Exhibit{
		Name: "Robot Lab", Description: "hands-on robotics, safe for kids",
		Category: "technology", Duration: 8, Rating: 4.5, Floor: core.FloorGround,
	}
	s1, r1 := scoreOf(t, p, ex)
	s2, r2 := scoreOf(t, p, ex)
	if s1 != s2 || len(r1) != len(r2) {
		t.Errorf("打分必须确定: %v/%v vs %v/%v", s1, r1, s2, r2)
	}
	for i := range r1 {
		if r1[i] != r2[i] {
			t.Errorf("解释顺序必须稳定: %v vs %v", r1, r2)
		}
	}
}

func containsSubstring(reasons []string, sub string) bool {
	for _, r := range reasons {
		if strings.Contains(r, sub) {
			return true
		}
	}
	return false
}
