package mongo

import "time"

// ChannelModel 创作者频道，_id 即用户 ID
type ChannelModel struct {
	ID          string    `bson:"_id" json:"id"`
	ChannelName *string   `bson:"channel_name" json:"channelName"`
	PhotoURL    *string   `bson:"photo_url" json:"photoUrl"`
	YoutubeLink *string   `bson:"youtube_link" json:"youtubeLink"`
	TwitterLink *string   `bson:"twitter_link" json:"twitterLink"`
	Subscribers int64     `bson:"subscribers" json:"subscribers"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
