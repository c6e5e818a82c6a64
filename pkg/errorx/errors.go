package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind int

const (
	// KindConfiguration 配置缺失（致命，不重试）
	KindConfiguration Kind = iota + 1
	// KindInvalidInput 调用方输入非法
	KindInvalidInput
	// KindTransient 缓存/存储暂时不可用（可重试）
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidInput:
		return "invalid_input"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error 业务错误结构（包含可重试标记）
type Error struct {
	Kind      Kind
	Code      int
	Message   string
	Retryable bool
	Err       error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration 创建配置错误（如重量档位表为空）
func Configuration(message string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

// InvalidInput 创建输入错误（如数量为负）
func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf(format, args...),
	}
}

// Transient 包装基础设施错误
func Transient(message string, err error) *Error {
	return &Error{
		Kind:      KindTransient,
		Code:      http.StatusServiceUnavailable,
		Message:   message,
		Retryable: true,
		Err:       err,
	}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsConfiguration(err error) bool { return kindOf(err) == KindConfiguration }
func IsInvalidInput(err error) bool  { return kindOf(err) == KindInvalidInput }
func IsTransient(err error) bool     { return kindOf(err) == KindTransient }

// HTTPStatus 映射到 HTTP 状态码，未知错误按 500 处理
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Code > 0 {
		return e.Code
	}
	return http.StatusInternalServerError
}
