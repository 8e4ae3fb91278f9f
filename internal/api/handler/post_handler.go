package handler

import (
	"Airena/internal/api/dto"
	"Airena/internal/api/middleware"
	"Airena/internal/pkg/response"
	"Airena/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	var form dto.PostFormDTO
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, err)
		return
	}
	image, closeImage, err := openFormFile(c, "image")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer closeImage()

	res, err := s.postSvc.CreatePost(c.Request.Context(), middleware.GetPrincipal(c), &form, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, res)
}

// UpdatePost 配图可选，未上传时保留原图
func (s *PostHandler) UpdatePost(c *gin.Context) {
	var form dto.PostFormDTO
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, err)
		return
	}
	image, closeImage, err := openFormFile(c, "image")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer closeImage()

	res, err := s.postSvc.UpdatePost(c.Request.Context(), middleware.GetPrincipal(c), c.Param("post_id"), &form, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	if err := s.postSvc.DeletePost(c.Request.Context(), middleware.GetPrincipal(c), c.Param("post_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) GetPost(c *gin.Context) {
	post, err := s.postSvc.GetPost(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) GetPostBySlug(c *gin.Context) {
	post, err := s.postSvc.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) ListPosts(c *gin.Context) {
	var query dto.PageQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}
	posts, err := s.postSvc.ListPosts(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) GetFeaturedPost(c *gin.Context) {
	post, err := s.postSvc.GetFeaturedPost(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) SearchPost(c *gin.Context) {
	var query dto.PostSearchQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrSearchKeywordRequired)
		return
	}
	res, err := s.postSvc.SearchPosts(c.Request.Context(), query.Keyword, query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
