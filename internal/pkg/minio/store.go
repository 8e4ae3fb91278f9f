package minio

import (
	"context"
	"io"
	"time"
)

// Store 将包级函数适配为对象存储接口，供 service 注入
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return UploadFile(ctx, key, reader, size, contentType)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return DeleteFile(ctx, key)
}

func (s *Store) PublicURL(key string) string {
	return GetPublicURL(key)
}

func (s *Store) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return GetSignedURL(ctx, key, expiry)
}
