package handler

import (
	"Airena/internal/api/dto"
	"Airena/internal/api/middleware"
	"Airena/internal/pkg/response"
	"Airena/internal/service"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	appSvc service.ApplicationService
}

func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		appSvc: appSvc,
	}
}

// SubmitApplication 请求体可为空，频道信息均为可选
func (s *ApplicationHandler) SubmitApplication(c *gin.Context) {
	var form dto.ApplicationSubmitDTO
	if err := c.ShouldBindJSON(&form); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, err)
		return
	}
	app, err := s.appSvc.SubmitApplication(c.Request.Context(), middleware.GetPrincipal(c), &form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, app)
}

func (s *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := s.appSvc.ListApplications(c.Request.Context(), middleware.GetPrincipal(c), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, apps)
}

func (s *ApplicationHandler) DecideApplication(c *gin.Context) {
	var decision dto.ApplicationDecisionDTO
	if err := c.ShouldBindJSON(&decision); err != nil {
		response.Error(c, service.ErrInvalidStatus)
		return
	}
	app, err := s.appSvc.DecideApplication(c.Request.Context(), middleware.GetPrincipal(c), c.Param("user_id"), decision.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, app)
}
