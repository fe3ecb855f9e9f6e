package core

import "strings"

// VisitorProfile 是访客画像：推荐请求的全局上下文。
//
// 一句话定义：访客画像 = 规则打分的信号源 + 向量化的兴趣来源 + 预算约束。
//
// 设计要点：
//  维度            作用
//  AgeBand         年龄段匹配（自由文本，匹配前统一小写）
//  GroupType       团体类型（family / research / student ...）
//  Interests       兴趣关键词，驱动规则加分与向量化
//  TimeBudget      行程时间预算（分钟），预算选择器的硬约束
//  偏好字段        互动/移动/噪音等软偏好，小幅加分
//
// Normalize 之后画像不可变：所有默认值在请求边界一次性补齐，
// 打分阶段不再做任何兜底推导。
type VisitorProfile struct {
	AgeBand    string
	GroupType  string
	GroupSize  int
	Interests  []string
	TimeBudget float64 // 分钟

	// 可选偏好（空字符串表示无偏好）
	Mobility       string
	CrowdTolerance string
	Interactivity  string
	Accessibility  string
	NoiseTolerance string
}

// Normalize 在请求边界一次性补齐默认值并统一大小写。
// 返回补齐后的副本，原画像不被修改。
func (p VisitorProfile) Normalize() VisitorProfile {
	out := p
	out.AgeBand = strings.ToLower(strings.TrimSpace(p.AgeBand))
	out.GroupType = strings.ToLower(strings.TrimSpace(p.GroupType))
	if out.GroupSize <= 0 {
		out.GroupSize = 1
	}
	interests := make([]string, 0, len(p.Interests))
	for _, kw := range p.Interests {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			interests = append(interests, kw)
		}
	}
	out.Interests = interests
	out.Mobility = strings.ToLower(strings.TrimSpace(p.Mobility))
	out.CrowdTolerance = strings.ToLower(strings.TrimSpace(p.CrowdTolerance))
	out.Interactivity = strings.ToLower(strings.TrimSpace(p.Interactivity))
	out.Accessibility = strings.ToLower(strings.TrimSpace(p.Accessibility))
	out.NoiseTolerance = strings.ToLower(strings.TrimSpace(p.NoiseTolerance))
	return out
}
