package redis

import (
	"Airena/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired 重试耗尽仍未拿到锁
var ErrLockNotAcquired = errors.New("lock not acquired")

const unlockScript = "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值，键不存在时返回空串
func GetValue(ctx context.Context, key string) (string, error) {
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// TryLock 抢占锁，retryTimes 为 -1 时一直重试直到 ctx 结束
func TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error) {
	for i := 0; i <= retryTimes || retryTimes == -1; i++ {
		success, err := Rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Millisecond * 200):
		}
	}
	return false, nil
}

// UnLock 释放锁，只删除自己持有的锁
func UnLock(ctx context.Context, key string, value interface{}) {
	Rdb.Eval(ctx, unlockScript, []string{key}, value)
}

// DeleteKey 删除一个键
func DeleteKey(ctx context.Context, key string) error {
	return Rdb.Del(ctx, key).Err()
}

// GetRdbClient 获取redis客户端
func GetRdbClient() *redis.Client {
	return Rdb
}

// Locker 基于 SETNX 的分布式互斥锁
type Locker struct {
	retryTimes int
}

func NewLocker(retryTimes int) *Locker {
	return &Locker{retryTimes: retryTimes}
}

// Acquire 获取锁并返回释放函数
func (s *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := TryLock(ctx, key, token, ttl, s.retryTimes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return func() {
		// 请求 ctx 可能已超时，释放使用独立 ctx
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		UnLock(releaseCtx, key, token)
	}, nil
}

// TokenBlacklist 以令牌签名为键的注销名单
type TokenBlacklist struct{}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{}
}

func (s *TokenBlacklist) Revoke(ctx context.Context, signature string, ttl time.Duration) error {
	return SetWithExpiration(ctx, blacklistKey(signature), true, ttl)
}

func (s *TokenBlacklist) IsRevoked(ctx context.Context, signature string) (bool, error) {
	value, err := GetValue(ctx, blacklistKey(signature))
	if err != nil {
		return false, err
	}
	return value != "", nil
}

func blacklistKey(signature string) string {
	return consts.TokenRevokedKey + signature
}
