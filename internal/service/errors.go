package service

import (
	"errors"
	"net/http"
)

var (
	ErrParamInvalid   = errors.New("invalid post payload")
	ErrPostNotFound   = errors.New("Post not found")
	ErrPostExists     = errors.New("post id already exists")
	ErrDeliveryFailed = errors.New("delivery failed")
	UnExpectedError   = errors.New("internal error, please retry later")
)

// ErrorMap 业务错误到 HTTP 状态码；ErrDeliveryFailed 只记录日志，不会返回给调用方
var ErrorMap = map[error]int{
	ErrParamInvalid: http.StatusUnprocessableEntity,
	ErrPostNotFound: http.StatusNotFound,
	ErrPostExists:   http.StatusConflict,
	UnExpectedError: http.StatusInternalServerError,
}
