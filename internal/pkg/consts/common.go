package consts

const (
	MimePrefixImage = "image/"
	MimePrefixVideo = "video/"
)

// 对象存储中的目录前缀
const (
	BlogImagePrefix = "blog-images/"
	VideoPrefix     = "videos/"
	AvatarPrefix    = "avatars/"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 文档集合名
const (
	PostCollection        = "posts"
	VideoCollection       = "videos"
	ChannelCollection     = "channels"
	ApplicationCollection = "creator_applications"
)
