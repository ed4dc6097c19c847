package service

import "errors"

// Kind 领域错误类别，handler 层据此映射 HTTP 状态码
type Kind string

const (
	KindNotFound         Kind = "NotFound"
	KindForbidden        Kind = "Forbidden"
	KindConflict         Kind = "Conflict"
	KindInvalidMediaType Kind = "InvalidMediaType"
	KindUnauthorized     Kind = "Unauthorized"
	KindUploadFailed     Kind = "UploadFailed"
	KindBadRequest       Kind = "BadRequest"
	KindInternal         Kind = "Internal"
)

// Error 带类别的领域错误
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf 返回 err 链上第一个领域错误的类别，非领域错误视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf 领域错误返回其消息，其他错误返回通用提示
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "服务器内部错误"
}
