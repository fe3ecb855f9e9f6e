package core

// VisitContext 承载一次推荐请求的访客/场景信息，贯穿整个 Pipeline 透传。
type VisitContext struct {
	// Profile 是已 Normalize 的访客画像（边界处一次性补齐默认值）。
	Profile *VisitorProfile

	// Floor 是请求的楼层选择（outside / ground / first / all）。
	Floor Floor

	// Global 为 true 时等价于 Floor=all：全馆行程，过滤阶段不限楼层。
	Global bool

	// ProfileVector 是画像聚合向量；无向量索引时为 nil，
	// 融合阶段据此切换到 无向量 权重组。
	ProfileVector []float64
}

// AllFloors 返回本次请求是否不限楼层。
func (vctx *VisitContext) AllFloors() bool {
	return vctx.Global || vctx.Floor == FloorAll
}
