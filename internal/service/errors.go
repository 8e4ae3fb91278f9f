package service

import (
	"Airena/internal/pkg/util"
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid          = errors.New("参数错误")
	ErrUnauthenticated       = errors.New("未登录或登录已失效")
	ErrForbidden             = errors.New("权限不足")
	ErrUserNotFound          = errors.New("用户不存在")
	ErrUserExist             = errors.New("用户已存在")
	ErrPasswordIncorrect     = errors.New("邮箱或密码错误")
	ErrFileNotSupported      = errors.New("不支持的文件类型")
	ErrFileTooLarge          = errors.New("文件过大")
	ErrPostFieldsRequired    = errors.New("标题、正文与配图均为必填项")
	ErrPostNotFound          = errors.New("文章不存在")
	ErrNoFeaturedPost        = errors.New("暂无精选文章")
	ErrFeaturedBusy          = errors.New("精选文章正在更新，请稍后重试")
	ErrVideoFieldsRequired   = errors.New("标题、简介、分类与视频文件均为必填项")
	ErrInvalidCategory       = errors.New("视频分类无效")
	ErrVideoNotFound         = errors.New("视频不存在")
	ErrAlreadyCreator        = errors.New("已经是创作者")
	ErrInvalidStatus         = errors.New("申请状态无效")
	ErrApplicationNotFound   = errors.New("创作者申请不存在")
	ErrChannelNotFound       = errors.New("频道不存在")
	ErrSearchKeywordRequired = errors.New("搜索关键词不能为空")
	UnExpectedError          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          BadRequest,
	ErrUnauthenticated:       Unauthorized,
	ErrForbidden:             Forbidden,
	ErrUserNotFound:          NotFound,
	ErrUserExist:             BadRequest,
	ErrPasswordIncorrect:     Unauthorized,
	ErrFileNotSupported:      BadRequest,
	ErrFileTooLarge:          BadRequest,
	ErrPostFieldsRequired:    BadRequest,
	ErrPostNotFound:          NotFound,
	ErrNoFeaturedPost:        NotFound,
	ErrFeaturedBusy:          InternalServerError,
	ErrVideoFieldsRequired:   BadRequest,
	ErrInvalidCategory:       BadRequest,
	ErrVideoNotFound:         NotFound,
	ErrAlreadyCreator:        BadRequest,
	ErrInvalidStatus:         BadRequest,
	ErrApplicationNotFound:   NotFound,
	ErrChannelNotFound:       NotFound,
	ErrSearchKeywordRequired: BadRequest,
	UnExpectedError:          InternalServerError,
	util.ErrFieldInvalid:     BadRequest,
}

// CodeOf 返回错误对应的状态码，未登记的错误视为系统异常
func CodeOf(err error) (int, bool) {
	for {
		if code, ok := ErrorMap[err]; ok {
			return code, true
		}
		if err = errors.Unwrap(err); err == nil {
			return InternalServerError, false
		}
	}
}
