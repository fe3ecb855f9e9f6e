// Package guard 是引擎边界的请求守卫：载荷校验 + 按来源身份的固定窗口限流。
package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rushteam/tourkit/core"
)

// CounterStore 是限流计数存储的抽象。
//
// Incr 必须把 "读取-递增-判断" 作为单个临界区执行：
// 同一身份的并发请求在计数上竞争，读后写会导致少算。
// 窗口过期时计数重置为 1 并开启新窗口。
//
// 实现：
//   - MemoryCounterStore：进程内 map（单实例部署；注入假时钟可测）
//   - RedisCounterStore：INCR + EXPIRE（多实例部署）
type CounterStore interface {
	// Incr 原子地递增 identity 在当前窗口内的计数，
	// 返回递增后的计数与窗口重置时间。
	Incr(ctx context.Context, identity string, window time.Duration) (count int, resetAt time.Time, err error)
}

// RateLimiter 是固定窗口限流器：每身份每窗口最多 Limit 次请求。
// 这里的限流是 advisory 的滥用保护，不是严格 SLA——
// 进程内计数即可，不做跨进程协调。
type RateLimiter struct {
	Store  CounterStore
	Window time.Duration // 默认 60s
	Limit  int           // 默认 30
	Clock  core.Clock    // 计算 RetryAfter 用；默认系统时钟
}

const (
	DefaultWindow = 60 * time.Second
	DefaultLimit  = 30
)

// NewRateLimiter 创建限流器，window/limit 非法时取默认值。
func NewRateLimiter(store CounterStore, window time.Duration, limit int, clock core.Clock) *RateLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if clock == nil {
		clock = core.RealClock{}
	}
	return &RateLimiter{Store: store, Window: window, Limit: limit, Clock: clock}
}

// Allow 检查 identity 是否放行；超限返回 THROTTLED 错误，
// RetryAfter 为窗口剩余时间。计数存储不可用时放行（降级，不阻断请求）。
func (rl *RateLimiter) Allow(ctx context.Context, identity string) error {
	if rl == nil || rl.Store == nil {
		return nil
	}

	count, resetAt, err := rl.Store.Incr(ctx, identity, rl.Window)
	if err != nil {
		return nil
	}
	if count > rl.Limit {
		retryAfter := resetAt.Sub(rl.Clock.Now())
		if retryAfter < 0 {
			retryAfter = 0
		}
		return core.NewThrottledError(core.ModuleGuard,
			fmt.Sprintf("guard: rate limit exceeded (%d req / %s)", rl.Limit, rl.Window),
			retryAfter)
	}
	return nil
}

// MemoryCounterStore 是进程内的计数存储。
// Clock 可注入假时钟，测试无需 wall-clock sleep。
type MemoryCounterStore struct {
	Clock core.Clock

	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

func NewMemoryCounterStore(clock core.Clock) *MemoryCounterStore {
	if clock == nil {
		clock = core.RealClock{}
	}
	return &MemoryCounterStore{
		Clock:    clock,
		counters: make(map[string]*windowCounter),
	}
}

func (m *MemoryCounterStore) Incr(_ context.Context, identity string, window time.Duration) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Clock.Now()
	wc, ok := m.counters[identity]
	if !ok || !now.Before(wc.resetAt) {
		// 新窗口：计数从 1 开始
		wc = &windowCounter{count: 1, resetAt: now.Add(window)}
		m.counters[identity] = wc
		return wc.count, wc.resetAt, nil
	}

	wc.count++
	return wc.count, wc.resetAt, nil
}
