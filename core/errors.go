package core

import "time"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分类（见错误代码常量）：
//   - INVALID_INPUT：请求字段缺失/非法，立即拒绝，不做任何计算
//   - THROTTLED：限流拒绝，携带 RetryAfter 提示
//   - UNAVAILABLE：外部服务不可用，调用方必须降级而非失败
//   - NOT_FOUND：资源不存在（如 last-result 槽位为空）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "THROTTLED"）
	Message string // 错误消息
	Module  string // 模块名称（如 "guard", "external", "store"）

	// RetryAfter 仅在 THROTTLED 时有意义：窗口剩余时间。
	RetryAfter time.Duration
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// NewThrottledError 创建限流错误，retryAfter 为窗口剩余时间。
func NewThrottledError(module, message string, retryAfter time.Duration) *DomainError {
	return &DomainError{
		Module:     module,
		Code:       ErrorCodeThrottled,
		Message:    message,
		RetryAfter: retryAfter,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeThrottled     = "THROTTLED"      // 触发限流
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleGuard    = "guard"    // 请求守卫
	ModuleStore    = "store"    // 存储模块
	ModuleExternal = "external" // 外部推荐服务
	ModuleEngine   = "engine"   // 引擎编排
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT（客户端输入错误）
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsThrottled 检查错误是否为 THROTTLED
func IsThrottled(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeThrottled
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}
