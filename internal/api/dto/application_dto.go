package dto

type ApplicationSubmitDTO struct {
	ChannelName *string `json:"channelName" binding:"omitempty,max=64"`
	YoutubeLink *string `json:"youtubeLink" binding:"omitempty,url"`
	TwitterLink *string `json:"twitterLink" binding:"omitempty,url"`
}

type ApplicationDecisionDTO struct {
	Status string `json:"status" binding:"required"`
}

type ApplicationDTO struct {
	UserID      string  `json:"userId"`
	ChannelName *string `json:"channelName"`
	YoutubeLink *string `json:"youtubeLink"`
	TwitterLink *string `json:"twitterLink"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}
