package response

import (
	"Airena/internal/api/dto"
	"Airena/internal/service"
	stdjson "encoding/json"
	"errors"
	"io"
	log "log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = http.StatusOK
	Created             = http.StatusCreated
	BadRequest          = http.StatusBadRequest
	Unauthorized        = http.StatusUnauthorized
	Forbidden           = http.StatusForbidden
	NotFound            = http.StatusNotFound
	InternalServerError = http.StatusInternalServerError
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// SuccessCreated 资源创建成功
func SuccessCreated(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, dto.Response{
		Code:    Created,
		Message: "created",
		Data:    data,
	})
}

// Fail 失败返回封装，HTTP 状态码与 code 一致
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, dto.Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, service.ErrParamInvalid.Error())
		return
	}

	if isMalformedInput(err) {
		Fail(c, BadRequest, service.ErrParamInvalid.Error())
		return
	}

	code, ok := service.CodeOf(err)
	if !ok {
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		Fail(c, code, service.UnExpectedError.Error())
		return
	}
	Fail(c, code, unwrapKnown(err).Error())
}

// unwrapKnown 返回错误链中第一个已登记的错误，避免把底层细节暴露给客户端
func unwrapKnown(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if _, ok := service.ErrorMap[e]; ok {
			return e
		}
	}
	return err
}

// isMalformedInput 请求体或表单无法解析到目标类型
func isMalformedInput(err error) bool {
	var (
		syntaxErr   *stdjson.SyntaxError
		typeErr     *stdjson.UnmarshalTypeError
		goSyntaxErr *json.SyntaxError
		goTypeErr   *json.UnmarshalTypeError
		numErr      *strconv.NumError
	)
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &goSyntaxErr) ||
		errors.As(err, &goTypeErr) ||
		errors.As(err, &numErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
