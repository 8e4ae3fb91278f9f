package service

import (
	"Airena/internal/pkg/kafka"
	"context"
	"io"
	"time"
)

// Locker 分布式锁，返回的函数用于释放
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// ObjectStore 对象存储
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// EventPublisher 业务事件发布
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, evt kafka.PostEvent) error
	PublishVideoView(ctx context.Context, videoID string) error
}

// TokenRevoker 令牌吊销名单
type TokenRevoker interface {
	Revoke(ctx context.Context, signature string, ttl time.Duration) error
	IsRevoked(ctx context.Context, signature string) (bool, error)
}
