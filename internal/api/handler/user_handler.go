package handler

import (
	"Airena/internal/api/dto"
	"Airena/internal/api/middleware"
	"Airena/internal/pkg/response"
	"Airena/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

func (s *UserHandler) Register(c *gin.Context) {
	var registerDTO dto.RegisterDTO
	if err := c.ShouldBindJSON(&registerDTO); err != nil {
		response.Error(c, err)
		return
	}
	user, err := s.userSvc.Register(c.Request.Context(), &registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, user)
}

func (s *UserHandler) Login(c *gin.Context) {
	var loginDTO dto.CredentialDTO
	if err := c.ShouldBindJSON(&loginDTO); err != nil {
		response.Error(c, err)
		return
	}
	token, err := s.userSvc.Login(c.Request.Context(), &loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

func (s *UserHandler) Logout(c *gin.Context) {
	token, _ := middleware.BearerToken(c)
	if err := s.userSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RefreshToken 审核通过后客户端调用以拿到带 creator 的新令牌
func (s *UserHandler) RefreshToken(c *gin.Context) {
	token, err := s.userSvc.RefreshToken(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

func (s *UserHandler) GetUserInfo(c *gin.Context) {
	user, err := s.userSvc.GetUserInfo(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (s *UserHandler) UploadAvatar(c *gin.Context) {
	file, closeFile, err := openFormFile(c, "file")
	if err != nil || file == nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer closeFile()

	user, err := s.userSvc.UploadAvatar(c.Request.Context(), middleware.GetPrincipal(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}
