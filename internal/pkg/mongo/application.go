package mongo

import "time"

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// ApplicationModel 创作者申请，_id 即申请人 ID，每人最多一条
type ApplicationModel struct {
	UserID      string    `bson:"_id" json:"userId"`
	ChannelName *string   `bson:"channel_name" json:"channelName"`
	YoutubeLink *string   `bson:"youtube_link" json:"youtubeLink"`
	TwitterLink *string   `bson:"twitter_link" json:"twitterLink"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
