package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类，作为机器可读的错误码返回给调用方
type Kind string

const (
	KindValidation        Kind = "validation"             // 输入非法或缺失
	KindNotFound          Kind = "not_found"              // 未知ID或令牌
	KindInsufficientFunds Kind = "insufficient_funds"     // 提现超出可用余额
	KindSignature         Kind = "signature_verification" // 回调签名或时间戳校验失败
	KindTokenExpired      Kind = "token_expired"          // 令牌超时
	KindTokenExhausted    Kind = "token_exhausted"        // 令牌查看次数用尽
	KindGateway           Kind = "gateway"                // 支付网关上游失败
	KindStateConflict     Kind = "state_conflict"         // 非法状态迁移（离开终态）
	KindInternal          Kind = "internal"               // 其他内部错误
)

// Error 业务错误
// Context 携带解释决策所需的数值上下文（如余额快照），一次往返即可在UI展示
type Error struct {
	Kind    Kind
	Message string
	Context map[string]interface{}
	// Retryable 仅网关类错误有意义：超时与5xx可重试，4xx不可
	Retryable bool
	cause     error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.cause
}

// New 创建业务错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf 创建带格式化消息的业务错误
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithContext 附加上下文字段
func (e *Error) WithContext(ctx map[string]interface{}) *Error {
	e.Context = ctx
	return e
}

// KindOf 提取错误分类，非业务错误归为 internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
