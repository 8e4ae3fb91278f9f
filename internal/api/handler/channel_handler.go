package handler

import (
	"Airena/internal/pkg/response"
	"Airena/internal/service"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	channelSvc service.ChannelService
}

func NewChannelHandler(channelSvc service.ChannelService) *ChannelHandler {
	return &ChannelHandler{
		channelSvc: channelSvc,
	}
}

func (s *ChannelHandler) GetChannel(c *gin.Context) {
	channel, err := s.channelSvc.GetChannel(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, channel)
}
