package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error 业务可预期的错误，携带 HTTP 状态码，由路由层统一转成 JSON 响应。
// 非 *Error 的错误视为程序错误，对外只暴露 500。
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New 构造指定状态码的业务错误
func New(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// BadRequest 参数/校验类错误（400）
func BadRequest(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, format, args...)
}

// Unauthorized 未登录（401）
func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

// Forbidden 角色或归属不允许（403）
func Forbidden(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, format, args...)
}

// NotFound 引用的资源不存在（404）
func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, format, args...)
}

// Conflict 非法状态流转等冲突，与原接口保持 400
func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, format, args...)
}

// StatusCode 获取错误对应的 HTTP 状态码，程序错误一律 500
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

// IsOperational 是否为可预期的业务错误
func IsOperational(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
