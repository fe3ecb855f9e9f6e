package guard

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rushteam/tourkit/core"
)

// fakeClock 是可手动拨动的假时钟：限流测试无需 wall-clock sleep。
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiterWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewRateLimiter(NewMemoryCounterStore(clock), 60*time.Second, 2, clock)
	ctx := context.Background()

	// 窗口内：前两次放行，第三次限流
	if err := limiter.Allow(ctx, "1.2.3.4"); err != nil {
		t.Fatalf("第 1 次请求应放行: %v", err)
	}
	if err := limiter.Allow(ctx, "1.2.3.4"); err != nil {
		t.Fatalf("第 2 次请求应放行: %v", err)
	}
	err := limiter.Allow(ctx, "1.2.3.4")
	if !core.IsThrottled(err) {
		t.Fatalf("第 3 次请求应被限流: %v", err)
	}
	de := core.GetDomainError(err)
	if de.RetryAfter <= 0 || de.RetryAfter > 60*time.Second {
		t.Errorf("RetryAfter 应为窗口剩余时间: %v", de.RetryAfter)
	}

	// 其他身份不受影响
	if err := limiter.Allow(ctx, "5.6.7.8"); err != nil {
		t.Errorf("不同身份不应被限流: %v", err)
	}

	// 窗口过期后计数重置
	clock.Advance(61 * time.Second)
	if err := limiter.Allow(ctx, "1.2.3.4"); err != nil {
		t.Errorf("窗口过期后请求应放行: %v", err)
	}
}

func TestRateLimiterConcurrent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := NewMemoryCounterStore(clock)
	limiter := NewRateLimiter(store, time.Minute, 50, clock)
	ctx := context.Background()

	// 同一身份并发打点：increment-and-check 必须是单个临界区，不得少算
	done := make(chan error, 100)
	for i := 0; i < 100; i++ {
		go func() {
			done <- limiter.Allow(ctx, "racer")
		}()
	}
	throttled := 0
	for i := 0; i < 100; i++ {
		if err := <-done; core.IsThrottled(err) {
			throttled++
		}
	}
	if throttled != 50 {
		t.Errorf("100 次并发请求限额 50，应限流 50 次，实际 %d 次", throttled)
	}
}

func TestParsePayload(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"floor": "ground",
			"profile": map[string]any{
				"groupType":  "Family",
				"groupSize":  float64(2),
				"interests":  []any{"robotics"},
				"timeBudget": float64(60),
			},
		}
	}

	t.Run("合法载荷解析并补默认值", func(t *testing.T) {
		req, err := ParsePayload(valid())
		if err != nil {
			t.Fatal(err)
		}
		if req.Floor != core.FloorGround {
			t.Errorf("floor = %v", req.Floor)
		}
		if req.Profile.GroupType != "family" {
			t.Errorf("groupType 应统一小写: %q", req.Profile.GroupType)
		}
		if req.Profile.GroupSize != 2 {
			t.Errorf("groupSize = %d", req.Profile.GroupSize)
		}
	})

	t.Run("groupSize 缺省为 1", func(t *testing.T) {
		m := valid()
		delete(m["profile"].(map[string]any), "groupSize")
		req, err := ParsePayload(m)
		if err != nil {
			t.Fatal(err)
		}
		if req.Profile.GroupSize != 1 {
			t.Errorf("缺省 groupSize 应为 1，实际 %d", req.Profile.GroupSize)
		}
	})

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"缺 floor", func(m map[string]any) { delete(m, "floor") }, "floor"},
		{"非法 floor", func(m map[string]any) { m["floor"] = "basement" }, "floor"},
		{"interests 非字符串数组", func(m map[string]any) {
			m["profile"].(map[string]any)["interests"] = []any{"a", 42}
		}, "interests"},
		{"interests 非数组", func(m map[string]any) {
			m["profile"].(map[string]any)["interests"] = "robotics"
		}, "interests"},
		{"groupSize 非数字", func(m map[string]any) {
			m["profile"].(map[string]any)["groupSize"] = "two"
		}, "groupSize"},
		{"groupType 非字符串", func(m map[string]any) {
			m["profile"].(map[string]any)["groupType"] = 7
		}, "groupType"},
		{"缺 timeBudget", func(m map[string]any) {
			delete(m["profile"].(map[string]any), "timeBudget")
		}, "timeBudget"},
		{"timeBudget 非正", func(m map[string]any) {
			m["profile"].(map[string]any)["timeBudget"] = float64(0)
		}, "timeBudget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			_, err := ParsePayload(m)
			if !core.IsInvalidInput(err) {
				t.Fatalf("期望 INVALID_INPUT，实际 %v", err)
			}
			if msg := err.Error(); !containsField(msg, tt.field) {
				t.Errorf("错误消息应指明字段 %q: %q", tt.field, msg)
			}
		})
	}
}

func containsField(msg, field string) bool {
	return strings.Contains(msg, "'"+field+"'")
}

func TestIdentity(t *testing.T) {
	t.Run("优先转发头首跳", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", nil)
		r.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
		r.RemoteAddr = "192.168.1.1:5000"
		if got := Identity(r); got != "10.0.0.1" {
			t.Errorf("Identity = %q, 期望 10.0.0.1", got)
		}
	})

	t.Run("回退到连接地址", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = "192.168.1.1:5000"
		if got := Identity(r); got != "192.168.1.1" {
			t.Errorf("Identity = %q, 期望 192.168.1.1", got)
		}
	})
}
