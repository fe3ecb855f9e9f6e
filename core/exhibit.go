package core

// Floor 是展区楼层标识。引擎只认识三个物理楼层，外加请求侧的 "all"。
type Floor string

const (
	FloorOutside Floor = "outside" // 室外展区
	FloorGround  Floor = "ground"  // 一层
	FloorFirst   Floor = "first"   // 二层
	FloorAll     Floor = "all"     // 仅用于请求：不限楼层
)

// ValidFloor 校验请求侧的楼层取值（含 "all"）。
func ValidFloor(f Floor) bool {
	switch f {
	case FloorOutside, FloorGround, FloorFirst, FloorAll:
		return true
	default:
		return false
	}
}

// Exhibit 是展品快照：引擎的只读输入，生命周期归目录协作方所有。
//
// 设计要点：
//   - 引擎不做任何写操作，拿到的就是某一时刻的快照
//   - Duration 单位为分钟，必须 > 0（非法值在硬过滤阶段剔除）
//   - Rating 为 0 表示未评分
type Exhibit struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Duration    float64  `json:"duration"`
	Rating      float64  `json:"rating,omitempty"`
	AgeRange    string   `json:"ageRange,omitempty"`
	ExhibitType string   `json:"exhibitType,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Features    []string `json:"features,omitempty"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Floor       Floor    `json:"floor"`
}
