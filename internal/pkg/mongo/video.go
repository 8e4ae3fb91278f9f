package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VideoCategoryGames  = "games"
	VideoCategorySports = "sports"
)

// VideoModel 视频
type VideoModel struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Category       string             `bson:"category" json:"category"`    // games | sports
	VideoURL       string             `bson:"video_url" json:"videoUrl"`   // 上传时生成的链接，签名链接读取时重签
	VideoKey       string             `bson:"video_key" json:"-"`          // 对象 key
	ContentType    string             `bson:"content_type" json:"-"`       // 嗅探得到的 MIME
	AuthorID       string             `bson:"author_id" json:"authorId"`   // 上传者
	AuthorName     string             `bson:"author_name" json:"authorName"`
	AuthorPhotoURL *string            `bson:"author_photo_url" json:"authorPhotoUrl"`
	Views          int64              `bson:"views" json:"views"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}
