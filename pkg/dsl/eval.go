package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/tourkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("exhibit", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("profile", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是展品排除规则的解释器，使用 CEL (Common Expression Language) 实现。
// 运营侧可以用表达式声明硬排除规则，不用改代码。
//
// 表达式语法（CEL 标准语法）：
//   - 字段：exhibit.category == "geology" / exhibit.duration > 30.0
//   - 逻辑：exhibit.floor == "outside" && exhibit.rating < 2.0
//   - 画像：profile.group_type == "family" && exhibit.difficulty == "advanced"
//   - 标签：label.scored_by != null
//
// 示例：
//   - `exhibit.duration > 45.0` → 剔除超长展品
//   - `profile.age_band == "child" && exhibit.difficulty == "advanced"` → 儿童剔除高难度
type Eval struct {
	item *core.Item
	vctx *core.VisitContext
	env  *cel.Env
}

// NewEval 创建一个新的规则解释器。
func NewEval(item *core.Item, vctx *core.VisitContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		vctx: vctx,
		env:  env,
	}
}

// Evaluate 解析并执行表达式，返回布尔结果。
// 注意：CEL 访问不存在的 key 会报错，用 label.key != null 检查存在性。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]any {
	ex := e.item.Exhibit
	exhibit := map[string]any{
		"id":          ex.ID,
		"name":        ex.Name,
		"description": ex.Description,
		"category":    ex.Category,
		"duration":    ex.Duration,
		"rating":      ex.Rating,
		"difficulty":  ex.Difficulty,
		"type":        ex.ExhibitType,
		"floor":       string(ex.Floor),
		"score":       e.item.Score,
	}

	// label.scored_by 直接访问 value；不存在的 key 为 null
	labelAccessor := make(map[string]any, len(e.item.Labels))
	for k, v := range e.item.Labels {
		labelAccessor[k] = v.Value
	}

	profile := map[string]any{}
	if e.vctx != nil && e.vctx.Profile != nil {
		p := e.vctx.Profile
		profile = map[string]any{
			"age_band":    p.AgeBand,
			"group_type":  p.GroupType,
			"group_size":  p.GroupSize,
			"interests":   p.Interests,
			"time_budget": p.TimeBudget,
		}
	}

	return map[string]any{
		"exhibit": exhibit,
		"label":   labelAccessor,
		"profile": profile,
	}
}
