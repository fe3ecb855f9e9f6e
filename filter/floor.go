package filter

import (
	"context"

	"github.com/rushteam/tourkit/core"
)

// Floor 按请求楼层做硬过滤。
// 请求为 all（或 Global 行程）时所有楼层都放行；
// 楼层不匹配是前置剔除，不是扣分。
type Floor struct{}

func (f *Floor) Name() string { return "filter.floor" }

func (f *Floor) ShouldFilter(_ context.Context, vctx *core.VisitContext, item *core.Item) (bool, error) {
	if vctx == nil || vctx.AllFloors() {
		return false, nil
	}
	return item.Exhibit.Floor != vctx.Floor, nil
}

// Duration 剔除时长非法或明显离群的展品。
// MaxDuration <= 0 时使用默认上限。
type Duration struct {
	MaxDuration float64
}

// defaultMaxDuration 是单展品时长的粗离群上限（分钟）。
const defaultMaxDuration = 120.0

func (f *Duration) Name() string { return "filter.duration" }

func (f *Duration) ShouldFilter(_ context.Context, _ *core.VisitContext, item *core.Item) (bool, error) {
	max := f.MaxDuration
	if max <= 0 {
		max = defaultMaxDuration
	}
	d := item.Exhibit.Duration
	return d <= 0 || d > max, nil
}
