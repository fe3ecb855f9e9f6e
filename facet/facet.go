// Package facet 从展品文本推导定性属性（主题、互动形态、噪音水平等）。
//
// 所有推导都是纯函数：相同文本必须得到逐字节一致的结果，
// 因为 facet 会进入面向用户展示的解释串。
package facet

import (
	"strings"

	"github.com/rushteam/tourkit/core"
)

// 互动形态
const (
	InteractivityHandsOn     = "hands-on"
	InteractivityInteractive = "interactive"
	InteractivityPassive     = "passive"
	InteractivityUnknown     = "unknown"
)

// 深度分级
const (
	DepthIntroductory = "introductory"
	DepthIntermediate = "intermediate"
	DepthAdvanced     = "advanced"
)

// Facets 是从展品文本推导出的定性属性集合。
type Facets struct {
	Topics             []string `json:"topics"`
	Interactivity      string   `json:"interactivity"`
	FamilyFriendliness string   `json:"familyFriendliness"` // high / medium
	NoiseLevel         string   `json:"noiseLevel"`         // medium / low
	DepthLevel         string   `json:"depthLevel"`         // introductory / intermediate / advanced
}

// topicOrder 固定主题遍历顺序，保证 Topics 输出顺序稳定。
var topicOrder = []string{
	"geology", "robotics", "physics", "space",
	"environment", "biology", "chemistry", "history", "technology",
}

// topicKeywords 是主题词表：子串命中即算该主题，非互斥。
var topicKeywords = map[string][]string{
	"geology":     {"geology", "geological", "rock", "mineral", "fossil", "earthquake", "volcano"},
	"robotics":    {"robot", "robotics", "automation", "mechanical arm"},
	"physics":     {"physics", "mechanics", "magnet", "electricity", "optics", "gravity"},
	"space":       {"space", "astronomy", "planet", "star", "rocket", "satellite"},
	"environment": {"environment", "ecology", "climate", "nature", "conservation"},
	"biology":     {"biology", "animal", "plant", "dinosaur", "organism", "ecosystem"},
	"chemistry":   {"chemistry", "chemical", "molecule", "element", "reaction"},
	"history":     {"history", "ancient", "heritage", "civilization", "archaeology"},
	"technology":  {"technology", "computer", "digital", "machine", "engineering"},
}

// depthKeywords 命中即视为深度内容（配合时长判定 DepthLevel）。
var depthKeywords = []string{"advanced", "in-depth", "research", "detailed analysis"}

// HasTopic 判断是否包含指定主题。
func (f Facets) HasTopic(topic string) bool {
	for _, t := range f.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// HasAnyTopic 判断是否包含任一指定主题。
func (f Facets) HasAnyTopic(topics ...string) bool {
	for _, t := range topics {
		if f.HasTopic(t) {
			return true
		}
	}
	return false
}

// Extract 从展品的名称/描述/类别文本推导 facet。
// 纯函数、无副作用；文本统一小写后拼接参与匹配。
func Extract(ex *core.Exhibit) Facets {
	text := strings.ToLower(ex.Name + " " + ex.Description + " " + ex.Category)
	desc := strings.ToLower(ex.Description)

	f := Facets{
		Topics:        extractTopics(text),
		Interactivity: extractInteractivity(text),
	}

	// 家庭友好度：安全描述或 hands-on 为 high；interactive 为 medium；默认 medium
	switch {
	case strings.Contains(desc, "safe") || f.Interactivity == InteractivityHandsOn:
		f.FamilyFriendliness = "high"
	default:
		f.FamilyFriendliness = "medium"
	}

	// 噪音水平：hands-on / interactive 为 medium，其余 low
	if f.Interactivity == InteractivityHandsOn || f.Interactivity == InteractivityInteractive {
		f.NoiseLevel = "medium"
	} else {
		f.NoiseLevel = "low"
	}

	f.DepthLevel = extractDepth(ex.Duration, desc)
	return f
}

func extractTopics(text string) []string {
	topics := make([]string, 0, 4)
	for _, topic := range topicOrder {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(text, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}
	return topics
}

// extractInteractivity 按优先级判定：hands-on > interactive > passive > unknown。
func extractInteractivity(text string) string {
	switch {
	case strings.Contains(text, "hands-on") || strings.Contains(text, "hands on"):
		return InteractivityHandsOn
	case strings.Contains(text, "interactive"):
		return InteractivityInteractive
	case strings.Contains(text, "passive") || strings.Contains(text, "observational"):
		return InteractivityPassive
	default:
		return InteractivityUnknown
	}
}

func extractDepth(duration float64, desc string) string {
	if duration >= 8 {
		return DepthAdvanced
	}
	for _, kw := range depthKeywords {
		if strings.Contains(desc, kw) {
			return DepthAdvanced
		}
	}
	if duration >= 5 {
		return DepthIntermediate
	}
	return DepthIntroductory
}
