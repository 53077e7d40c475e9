package response

import (
	"Forwarder/internal/api/dto"
	"Forwarder/internal/pkg/util"
	"Forwarder/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	Ok                  = http.StatusOK
	NotFound            = http.StatusNotFound
	Conflict            = http.StatusConflict
	Unprocessable       = http.StatusUnprocessableEntity
	InternalServerError = http.StatusInternalServerError
)

// Success 成功返回封装
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail HTTP 状态码与业务码一致
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, dto.Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// BindError 请求体无法解析或校验失败，统一返回 422
func BindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, Unprocessable, util.FirstValidationError(ve))
		return
	}
	Fail(c, Unprocessable, service.ErrParamInvalid.Error()+": "+err.Error())
}

// Error 业务错误按 ErrorMap 映射，未知错误只记录日志不外泄
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, Unprocessable, util.FirstValidationError(ve))
		return
	}

	for target, code := range service.ErrorMap {
		if errors.Is(err, target) {
			Fail(c, code, target.Error())
			return
		}
	}

	log.ErrorContext(c.Request.Context(), "unexpected error", "err", err)
	Fail(c, InternalServerError, service.UnExpectedError.Error())
}
