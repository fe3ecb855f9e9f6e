// Package rule 实现规则启发打分：从画像属性与展品 facet 推导相关性分与可读解释。
//
// 所有加减分彼此独立、只做求和，顺序不影响结果；
// 楼层约束是前置硬过滤，不在这里扣分。
// 每次加减分都按产生顺序追加一条解释串；解释只用于展示，
// 下游逻辑不会重新解析（测试里只做子串断言）。
package rule

import (
	"fmt"
	"math"
	"strings"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/facet"
)

// 启发分常量（启发单位，无界；权重调节在融合阶段做）
const (
	baseScore = 50.0

	familyHandsOnBonus     = 30.0
	familyInteractiveBonus = 18.0
	familyFriendlyBonus    = 8.0

	researchTopicBonus    = 20.0
	researchDurationBonus = 8.0

	techTopicBonus       = 25.0
	techIrrelevantMalus  = 12.0
	interestMatchBonus   = 15.0
	interactivityBonus   = 8.0
	timeFitBonus         = 10.0
	mobilityBonus        = 6.0
	noiseToleranceBonus  = 6.0
	crowdToleranceBonus  = 6.0
	ratingBonusCeiling   = 10.0
	ratingBonusPerPoint  = 2.0
	timeFitFloorMinutes  = 5.0
)

// techInterests 是技术向兴趣关键词集合：命中任一即视为技术向访客。
var techInterests = map[string]bool{
	"robotics": true, "robot": true, "ai": true, "technology": true,
	"computer": true, "programming": true, "engineering": true,
}

// techTopics / techIrrelevantTopics 是技术向访客的加分与减分主题集。
// 减分是刻意的负向信号（降低排名），不是过滤。
var (
	techTopics           = []string{"robotics", "technology", "physics", "space"}
	techIrrelevantTopics = []string{"environment", "history"}
	researchTopics       = []string{"geology", "physics", "technology"}
)

// Score 计算展品的规则启发分与有序解释列表。
// 纯函数：不修改入参，不访问外部状态。
func Score(profile *core.VisitorProfile, ex *core.Exhibit, f facet.Facets) (float64, []string) {
	score := baseScore
	reasons := make([]string, 0, 8)

	add := func(delta float64, reason string) {
		score += delta
		reasons = append(reasons, reason)
	}

	// 家庭/儿童团体
	if isFamilyGroup(profile) {
		if f.Interactivity == facet.InteractivityHandsOn {
			add(familyHandsOnBonus, "hands-on exhibit, great for family visits")
		} else if f.Interactivity == facet.InteractivityInteractive {
			add(familyInteractiveBonus, "interactive exhibit suits family groups")
		}
		if f.FamilyFriendliness == "high" {
			add(familyFriendlyBonus, "rated family-friendly")
		}
	}

	// 研究向团体
	if strings.Contains(profile.GroupType, "research") {
		if f.HasAnyTopic(researchTopics...) {
			add(researchTopicBonus, "covers research-relevant topics")
		}
		if ex.Duration >= 5 {
			add(researchDurationBonus, "long enough for in-depth study")
		}
	}

	// 技术向访客（显式团体类型，或任一兴趣命中技术关键词集）
	if isTechOriented(profile) {
		if f.HasAnyTopic(techTopics...) {
			add(techTopicBonus, "strong match for technology-focused visit")
		}
		if f.HasAnyTopic(techIrrelevantTopics...) {
			add(-techIrrelevantMalus, "less relevant for a technology-focused visit")
		}
	}

	// 兴趣关键词逐个匹配（不封顶：多个兴趣各自贡献）
	text := strings.ToLower(ex.Name + " " + ex.Description + " " + ex.Category)
	for _, kw := range profile.Interests {
		if kw != "" && strings.Contains(text, kw) {
			add(interestMatchBonus, fmt.Sprintf("matches interest %q", kw))
		}
	}

	// 互动偏好精确匹配
	if profile.Interactivity != "" && profile.Interactivity == f.Interactivity {
		add(interactivityBonus, "matches preferred interactivity style")
	}

	// 时长适配：duration <= max(5, budget / groupSize)
	if ex.Duration <= math.Max(timeFitFloorMinutes, profile.TimeBudget/float64(profile.GroupSize)) {
		add(timeFitBonus, "fits comfortably in your time budget")
	}

	// 行动能力：受限访客偏好无台阶的一层展区
	if (profile.Mobility == "limited" || profile.Mobility == "wheelchair") && ex.Floor == core.FloorGround {
		add(mobilityBonus, "step-free access on the ground floor")
	}

	// 噪音/人流偏好
	if profile.NoiseTolerance == "low" && f.NoiseLevel == "low" {
		add(noiseToleranceBonus, "quiet exhibit suits low-noise preference")
	}
	if profile.CrowdTolerance == "low" &&
		(f.Interactivity == facet.InteractivityPassive || f.Interactivity == facet.InteractivityUnknown) {
		add(crowdToleranceBonus, "typically less crowded")
	}

	// 评分加成：封顶，避免评分尺度变化放大影响
	if ex.Rating > 0 {
		add(math.Min(ex.Rating*ratingBonusPerPoint, ratingBonusCeiling), "highly rated by visitors")
	}

	return score, reasons
}

func isFamilyGroup(profile *core.VisitorProfile) bool {
	gt := profile.GroupType
	return strings.Contains(gt, "family") || strings.Contains(gt, "child") || strings.Contains(gt, "kid")
}

func isTechOriented(profile *core.VisitorProfile) bool {
	if strings.Contains(profile.GroupType, "student") || strings.Contains(profile.GroupType, "tech") {
		return true
	}
	for _, kw := range profile.Interests {
		if techInterests[kw] {
			return true
		}
	}
	return false
}
