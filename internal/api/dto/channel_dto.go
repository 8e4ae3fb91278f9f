package dto

type ChannelDTO struct {
	ID          string  `json:"id"`
	ChannelName *string `json:"channelName"`
	PhotoURL    *string `json:"photoURL"`
	YoutubeLink *string `json:"youtubeLink"`
	TwitterLink *string `json:"twitterLink"`
	Subscribers int64   `json:"subscribers"`
	CreatedAt   string  `json:"createdAt"`
}
