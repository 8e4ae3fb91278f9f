package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostModel 博客文章
type PostModel struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Content    string             `bson:"content" json:"content"`       // 经过清洗的 HTML
	Slug       string             `bson:"slug" json:"slug"`             // 创建后不再变化
	ImageURL   string             `bson:"image_url" json:"imageUrl"`    // 配图公开链接
	ImageKey   string             `bson:"image_key" json:"-"`           // 配图对象 key
	AuthorID   string             `bson:"author_id" json:"authorId"`    // 发布管理员
	AuthorName string             `bson:"author_name" json:"authorName"`
	IsFeatured bool               `bson:"is_featured" json:"isFeatured"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PostUpdate 文章更新字段，图片为空表示保留原图
type PostUpdate struct {
	Title      string
	Content    string
	ImageURL   *string
	ImageKey   *string
	IsFeatured *bool
}
