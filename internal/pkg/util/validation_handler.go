package util

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// 与 gin 共用 binding 标签，Kafka 摄入与 HTTP 摄入的校验规则保持一致
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.SetTagName("binding")
	_ = validate.RegisterValidation("notblank", validators.NotBlank)
}

// RegisterGinValidators 给 gin 的校验引擎注册自定义规则
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return v.RegisterValidation("notblank", validators.NotBlank)
}

func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return errors.New(FirstValidationError(vErrs))
		}
		return err
	}
	return nil
}

// FirstValidationError 只返回第一条校验失败信息
func FirstValidationError(vErrs validator.ValidationErrors) string {
	if len(vErrs) == 0 {
		return "validation failed"
	}
	first := vErrs[0]
	return fmt.Sprintf("field [%s] failed on rule [%s]", first.Field(), first.Tag())
}
