package facet

import (
	"reflect"
	"testing"

	"github.com/rushteam/tourkit/core"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		exhibit  core.Exhibit
		expected Facets
	}{
		{
			name: "hands-on 机器人展品",
			exhibit: core.Exhibit{
				Name:        "Robot Lab",
				Description: "A hands-on robotics workshop, safe for children",
				Category:    "technology",
				Duration:    6,
			},
			expected: Facets{
				Topics:             []string{"robotics", "technology"},
				Interactivity:      InteractivityHandsOn,
				FamilyFriendliness: "high",
				NoiseLevel:         "medium",
				DepthLevel:         DepthIntermediate,
			},
		},
		{
			name: "被动观察型地质展品",
			exhibit: core.Exhibit{
				Name:        "Mineral Hall",
				Description: "Observational display of rare minerals and rocks",
				Category:    "geology",
				Duration:    4,
			},
			expected: Facets{
				Topics:             []string{"geology"},
				Interactivity:      InteractivityPassive,
				FamilyFriendliness: "medium",
				NoiseLevel:         "low",
				DepthLevel:         DepthIntroductory,
			},
		},
		{
			name: "长时展品判定为 advanced",
			exhibit: core.Exhibit{
				Name:        "Deep Space Theater",
				Description: "interactive journey through the solar system",
				Category:    "astronomy",
				Duration:    10,
			},
			expected: Facets{
				Topics:             []string{"space"},
				Interactivity:      InteractivityInteractive,
				FamilyFriendliness: "medium",
				NoiseLevel:         "medium",
				DepthLevel:         DepthAdvanced,
			},
		},
		{
			name: "无任何信号默认 unknown",
			exhibit: core.Exhibit{
				Name:        "Lobby Mural",
				Description: "a large painting",
				Duration:    2,
			},
			expected: Facets{
				Topics:             []string{},
				Interactivity:      InteractivityUnknown,
				FamilyFriendliness: "medium",
				NoiseLevel:         "low",
				DepthLevel:         DepthIntroductory,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(&tt.exhibit)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Extract() = %+v, 期望 %+v", got, tt.expected)
			}
		})
	}
}

// 相同文本必须逐字节一致：facet 会进入面向用户的解释串。
func TestExtractDeterministic(t *testing.T) {
	ex := &core.Exhibit{
		Name:        "Volcano Simulator",
		Description: "hands-on earthquake and volcano simulation, safe for all ages",
		Category:    "earth science",
		Duration:    7,
	}
	first := Extract(ex)
	for i := 0; i < 10; i++ {
		if got := Extract(ex); !reflect.DeepEqual(got, first) {
			t.Fatalf("第 %d 次提取结果不一致: %+v vs %+v", i, got, first)
		}
	}
}

func TestHasAnyTopic(t *testing.T) {
	f := Facets{Topics: []string{"geology", "physics"}}
	if !f.HasAnyTopic("space", "physics") {
		t.Errorf("期望命中 physics")
	}
	if f.HasAnyTopic("history", "biology") {
		t.Errorf("不应命中任何主题")
	}
}
