package es

import "time"

// PostES 写入 ES 的文章文档，正文为去除标签后的纯文本
type PostES struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	PlainContent string    `json:"plain_content"`
	ImageURL     string    `json:"image_url"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SearchResult 分页搜索结果
type SearchResult struct {
	Total int64
	Posts []*PostES
}
