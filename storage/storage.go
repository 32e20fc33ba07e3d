package storage

import (
	"context"
	"errors"
)

// ErrNotFound 统一表示键不存在，各后端都归一到这个错误，
// 方便上层用 errors.Is 判断。
var ErrNotFound = errors.New("storage: key not found")

// KV 是所有持久化的最小抽象：域名列表、通知标记和 WHOIS 缓存
// 各自用不同的键前缀共享同一个后端。
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
