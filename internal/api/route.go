package api

import (
	"Airena/internal/api/middleware"
	"Airena/internal/model"
	"Airena/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	auth := middleware.AuthMiddleware(group.Verifier)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.POST("/register", group.UserHandler.Register)

			authGroup := userGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.POST("/refresh", group.UserHandler.RefreshToken)
				authGroup.GET("/info", group.UserHandler.GetUserInfo)
				authGroup.POST("/avatar", group.UserHandler.UploadAvatar)
			}
		}

		postGroup := apiGroup.Group("/posts")
		{
			postGroup.GET("", group.PostHandler.ListPosts)
			postGroup.GET("/featured", group.PostHandler.GetFeaturedPost)
			postGroup.GET("/search", group.PostHandler.SearchPost)
			postGroup.GET("/slug/:slug", group.PostHandler.GetPostBySlug)
			postGroup.GET("/:post_id", group.PostHandler.GetPost)

			// 需要登录 & 拥有 admin 角色
			adminGroup := postGroup.Group("")
			adminGroup.Use(auth, middleware.CheckRoles(model.RoleAdmin))
			{
				adminGroup.POST("", group.PostHandler.CreatePost)
				adminGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				adminGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
			}
		}

		videoGroup := apiGroup.Group("/videos")
		{
			videoGroup.GET("", group.VideoHandler.ListVideos)
			videoGroup.GET("/:video_id", group.VideoHandler.GetVideo)
			videoGroup.POST("/:video_id/view", group.VideoHandler.RecordView)

			authGroup := videoGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.GET("/user/:user_id", group.VideoHandler.GetUserVideos)
			}

			uploadGroup := videoGroup.Group("")
			uploadGroup.Use(auth, middleware.CheckRoles(model.RoleAdmin, model.RoleCreator))
			{
				uploadGroup.POST("", group.VideoHandler.UploadVideo)
			}
		}

		appGroup := apiGroup.Group("/creator-applications")
		appGroup.Use(auth)
		{
			appGroup.POST("", group.ApplicationHandler.SubmitApplication)

			superGroup := appGroup.Group("")
			superGroup.Use(middleware.CheckRoles(model.RoleSuperAdmin))
			{
				superGroup.GET("", group.ApplicationHandler.ListApplications)
				superGroup.POST("/:user_id", group.ApplicationHandler.DecideApplication)
			}
		}

		apiGroup.GET("/channels/:user_id", group.ChannelHandler.GetChannel)
	}

	return r
}
