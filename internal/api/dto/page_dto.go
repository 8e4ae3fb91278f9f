package dto

// PageQueryDTO 分页参数
type PageQueryDTO struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PostSearchQueryDTO 文章搜索参数
type PostSearchQueryDTO struct {
	PageQueryDTO
	Keyword string `form:"keyword" binding:"required,max=100"`
}

// VideoQueryDTO 视频列表参数
type VideoQueryDTO struct {
	PageQueryDTO
	Category string `form:"category" binding:"omitempty,oneof=games sports"`
}
