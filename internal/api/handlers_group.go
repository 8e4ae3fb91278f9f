package api

import (
	"Airena/internal/api/handler"
	"Airena/internal/api/middleware"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	Verifier           middleware.TokenVerifier
	UserHandler        *handler.UserHandler
	PostHandler        *handler.PostHandler
	VideoHandler       *handler.VideoHandler
	ApplicationHandler *handler.ApplicationHandler
	ChannelHandler     *handler.ChannelHandler
}
