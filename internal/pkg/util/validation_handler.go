package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrFieldInvalid 结构体字段未通过 validate 标签校验
var ErrFieldInvalid = errors.New("参数校验失败")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			return fmt.Errorf("%w: 字段 [%s] 校验失败，规则 [%s]",
				ErrFieldInvalid,
				firstError.Field(),
				firstError.Tag())
		}
		return err
	}
	return nil
}
