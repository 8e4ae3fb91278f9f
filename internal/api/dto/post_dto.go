package dto

// PostFormDTO 创建/更新文章的表单字段，配图单独以文件上传
type PostFormDTO struct {
	Title      string `form:"title" binding:"max=200"`
	Content    string `form:"content"`
	// 更新时省略则保持原值
	IsFeatured *bool  `form:"isFeatured"`
}

type PostDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Slug       string `json:"slug"`
	ImageURL   string `json:"imageUrl"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	IsFeatured bool   `json:"isFeatured"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type PostCreatedDTO struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type PostSearchItemDTO struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	ImageURL   string `json:"imageUrl"`
	AuthorName string `json:"authorName"`
	IsFeatured bool   `json:"isFeatured"`
	CreatedAt  string `json:"createdAt"`
}

type PostSearchDTO struct {
	Total int64                `json:"total"`
	Posts []*PostSearchItemDTO `json:"posts"`
}

// Featured 表单是否要求设为精选
func (f *PostFormDTO) Featured() bool {
	return f.IsFeatured != nil && *f.IsFeatured
}
