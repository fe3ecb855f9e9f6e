package core

import "time"

// Clock 是时间源抽象：限流窗口依赖它计数与过期。
// 生产使用 RealClock；测试注入假时钟，避免 wall-clock sleep。
type Clock interface {
	Now() time.Time
}

// RealClock 是系统时钟实现。
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
