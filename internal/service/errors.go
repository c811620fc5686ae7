package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound 在指定成员不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrCircleNotFound 在指定圈子不存在时返回
	ErrCircleNotFound = errors.New("circle not found")
	// ErrEntryNotFound 在指定时长记录不存在时返回
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEntryAlreadyVoided 在重复作废同一条记录时返回
	ErrEntryAlreadyVoided = errors.New("entry already voided")
	// ErrSenderNotConfigured 在未注入通知通道却尝试发送时返回
	ErrSenderNotConfigured = errors.New("reminder sender not configured")
)

// ValidationError 描述输入校验失败，Field 对应请求字段名
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func invalidWrap(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}
