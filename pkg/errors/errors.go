// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess          ErrorCode = "0"
	CodeUnknown          ErrorCode = "1000"
	CodeInvalidParam     ErrorCode = "1001"
	CodeUnauthorized     ErrorCode = "1002"
	CodeForbidden        ErrorCode = "1003"
	CodeNotFound         ErrorCode = "1004"
	CodeConflict         ErrorCode = "1005"
	CodeTooManyRequests  ErrorCode = "1006"
	CodeInternalError    ErrorCode = "1007"
	CodeValidationFailed ErrorCode = "1009"

	// 认证授权错误 (2xxx)
	CodeTokenExpired     ErrorCode = "2001"
	CodeTokenInvalid     ErrorCode = "2002"
	CodeTokenMissing     ErrorCode = "2003"
	CodePermissionDenied ErrorCode = "2004"

	// 资源错误 (3xxx)
	CodeProjectNotFound ErrorCode = "3001"
	CodeChapterNotFound ErrorCode = "3002"
	CodeVersionNotFound ErrorCode = "3003"
	CodeUserNotFound    ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeLockConflict     ErrorCode = "4001"
	CodeStatusConflict   ErrorCode = "4002"
	CodeNotProjectMember ErrorCode = "4003"
	CodeUnlockDenied     ErrorCode = "4004"
	CodeSnapshotShape    ErrorCode = "4005"

	// 外部服务错误 (5xxx)
	CodeDatabaseError  ErrorCode = "5001"
	CodeCacheError     ErrorCode = "5002"
	CodeTransientStore ErrorCode = "5003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Detail     string         `json:"detail,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	c := *e
	c.Detail = detail
	return &c
}

// WithMeta 添加结构化元数据（如锁持有者、允许的角色集合）
func (e *AppError) WithMeta(meta map[string]any) *AppError {
	c := *e
	c.Meta = meta
	return &c
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden, CodePermissionDenied, CodeNotProjectMember, CodeUnlockDenied:
		return http.StatusForbidden
	case CodeNotFound, CodeProjectNotFound, CodeChapterNotFound, CodeVersionNotFound, CodeUserNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeLockConflict, CodeStatusConflict:
		return http.StatusConflict
	case CodeValidationFailed, CodeSnapshotShape:
		return http.StatusUnprocessableEntity
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam     = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized     = New(CodeUnauthorized, "unauthorized")
	ErrForbidden        = New(CodeForbidden, "forbidden")
	ErrNotFound         = New(CodeNotFound, "resource not found")
	ErrConflict         = New(CodeConflict, "resource conflict")
	ErrTooManyRequests  = New(CodeTooManyRequests, "too many requests")
	ErrInternalError    = New(CodeInternalError, "internal server error")
	ErrValidationFailed = New(CodeValidationFailed, "validation failed")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrProjectNotFound = New(CodeProjectNotFound, "project not found")
	ErrChapterNotFound = New(CodeChapterNotFound, "chapter not found")
	ErrVersionNotFound = New(CodeVersionNotFound, "version not found")
	ErrUserNotFound    = New(CodeUserNotFound, "user not found")

	ErrNotProjectMember = New(CodeNotProjectMember, "not a member of this project")
	ErrLockConflict     = New(CodeLockConflict, "chapter locked by another editor")
	ErrStatusConflict   = New(CodeStatusConflict, "status transition not allowed")
	ErrUnlockDenied     = New(CodeUnlockDenied, "only the lock holder or project owner can unlock")
	ErrSnapshotShape    = New(CodeSnapshotShape, "version does not carry a whole-project snapshot")

	ErrTransientStore = New(CodeTransientStore, "store contention, retry the operation")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 检查错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
