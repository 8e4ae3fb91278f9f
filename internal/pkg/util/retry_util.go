package util

import (
	"context"
	"errors"
	"time"
)

// WithTimeout 在 timeout 内执行一次外部调用
func WithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(cctx)
}

// RetryRead 幂等读操作超时后重试一次，写操作不得使用
func RetryRead[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	res, err := WithTimeout(ctx, timeout, fn)
	if err == nil || !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return res, err
	}
	return WithTimeout(ctx, timeout, fn)
}
