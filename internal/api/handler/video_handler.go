package handler

import (
	"Airena/internal/api/dto"
	"Airena/internal/api/middleware"
	"Airena/internal/pkg/response"
	"Airena/internal/service"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	videoSvc service.VideoService
}

func NewVideoHandler(videoSvc service.VideoService) *VideoHandler {
	return &VideoHandler{
		videoSvc: videoSvc,
	}
}

func (s *VideoHandler) UploadVideo(c *gin.Context) {
	var form dto.VideoFormDTO
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, err)
		return
	}
	file, closeFile, err := openFormFile(c, "video")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer closeFile()

	video, err := s.videoSvc.UploadVideo(c.Request.Context(), middleware.GetPrincipal(c), &form, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, video)
}

// GetUserVideos 只允许本人查看
func (s *VideoHandler) GetUserVideos(c *gin.Context) {
	videos, err := s.videoSvc.GetUserVideos(c.Request.Context(), middleware.GetPrincipal(c), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, videos)
}

func (s *VideoHandler) ListVideos(c *gin.Context) {
	var query dto.VideoQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrInvalidCategory)
		return
	}
	videos, err := s.videoSvc.ListVideos(c.Request.Context(), query.Category, query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, videos)
}

func (s *VideoHandler) GetVideo(c *gin.Context) {
	video, err := s.videoSvc.GetVideo(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, video)
}

func (s *VideoHandler) RecordView(c *gin.Context) {
	if err := s.videoSvc.RecordView(c.Request.Context(), c.Param("video_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
