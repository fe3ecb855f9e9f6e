package guard

import (
	"math"
	"net"
	"net/http"
	"strings"

	"github.com/rushteam/tourkit/core"
)

// Request 是通过校验后的强类型请求：
// 动态载荷在边界处一次性变成显式值类型，默认值就地补齐，
// 打分阶段不再做任何兜底推导。
type Request struct {
	Profile core.VisitorProfile
	Floor   core.Floor
	Global  bool

	// VisitorID 可选：提供时引擎会尝试从特征存储补全稀疏画像。
	VisitorID string
}

// ParsePayload 校验并解析松散载荷。
// 任何违规都返回 INVALID_INPUT（客户端输入错误），消息指明出错字段；
// 绝不做静默强转。
func ParsePayload(raw map[string]any) (*Request, error) {
	if raw == nil {
		return nil, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: request body is required")
	}

	floorVal, ok := raw["floor"].(string)
	if !ok {
		return nil, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'floor' is required and must be a string")
	}
	floor := core.Floor(strings.ToLower(floorVal))
	if !core.ValidFloor(floor) {
		return nil, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'floor' must be one of outside/ground/first/all")
	}

	global := false
	if g, present := raw["global"]; present {
		b, ok := g.(bool)
		if !ok {
			return nil, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'global' must be a boolean")
		}
		global = b
	}

	visitorID := ""
	if v, present := raw["visitorId"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'visitorId' must be a string")
		}
		visitorID = s
	}

	profileRaw, _ := raw["profile"].(map[string]any)
	profile, err := parseProfile(profileRaw)
	if err != nil {
		return nil, err
	}

	return &Request{
		Profile:   profile.Normalize(),
		Floor:     floor,
		Global:    global,
		VisitorID: visitorID,
	}, nil
}

func parseProfile(raw map[string]any) (core.VisitorProfile, error) {
	var p core.VisitorProfile
	if raw == nil {
		return p, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'profile' is required")
	}

	var err error
	if p.AgeBand, err = optionalString(raw, "ageBand"); err != nil {
		return p, err
	}
	if p.GroupType, err = optionalString(raw, "groupType"); err != nil {
		return p, err
	}
	if p.Mobility, err = optionalString(raw, "mobility"); err != nil {
		return p, err
	}
	if p.CrowdTolerance, err = optionalString(raw, "crowdTolerance"); err != nil {
		return p, err
	}
	if p.Interactivity, err = optionalString(raw, "interactivity"); err != nil {
		return p, err
	}
	if p.Accessibility, err = optionalString(raw, "accessibility"); err != nil {
		return p, err
	}
	if p.NoiseTolerance, err = optionalString(raw, "noiseTolerance"); err != nil {
		return p, err
	}

	if v, present := raw["groupSize"]; present {
		f, ok := toFiniteNumber(v)
		if !ok {
			return p, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'groupSize' must be a finite number")
		}
		p.GroupSize = int(f)
	}

	budget, present := raw["timeBudget"]
	if !present {
		return p, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'timeBudget' is required")
	}
	f, ok := toFiniteNumber(budget)
	if !ok || f <= 0 {
		return p, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'timeBudget' must be a positive number")
	}
	p.TimeBudget = f

	if v, present := raw["interests"]; present {
		arr, ok := v.([]any)
		if !ok {
			return p, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'interests' must be an array of strings")
		}
		p.Interests = make([]string, 0, len(arr))
		for _, e := range arr {
			s, ok := e.(string)
			if !ok {
				return p, core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field 'interests' must be an array of strings")
			}
			p.Interests = append(p.Interests, s)
		}
	}

	return p, nil
}

func optionalString(raw map[string]any, field string) (string, error) {
	v, present := raw[field]
	if !present || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", core.NewDomainError(core.ModuleGuard, core.ErrorCodeInvalidInput, "guard: field '"+field+"' must be a string")
	}
	return s, nil
}

func toFiniteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Identity 解析请求的来源身份：优先转发地址头的首跳，回退到连接地址。
func Identity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
