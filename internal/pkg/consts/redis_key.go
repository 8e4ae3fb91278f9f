package consts

const (
	TokenRevokedKey = "token:revoked:"
)

const (
	FeaturedPostLock = "lock:post:featured"
)
