package whois

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"DomainCheck/storage"
)

// CacheStatus 标记一次查询是否命中缓存。
type CacheStatus string

const (
	CacheHit  CacheStatus = "HIT"
	CacheMiss CacheStatus = "MISS"
)

const cacheKeyPrefix = "whois:"

// cacheEntry 缓存负载连同写入时间一起落盘，
// 新鲜度判断放在 CachedResolver 里，后端只存字节。
type cacheEntry struct {
	Result    *Result   `json:"result"`
	WrittenAt time.Time `json:"writtenAt"`
}

// CachedResolver 在任意 Resolver 前面加一层按域名缓存：
// 距写入不超过 MaxAge 的条目算命中，过期视同不存在；
// 解析失败从不缓存，下一次照常回源。
type CachedResolver struct {
	Upstream Resolver
	Store    storage.KV
	MaxAge   time.Duration

	// Now 可注入，测试里用来拨时钟。
	Now func() time.Time

	wg sync.WaitGroup
}

func NewCachedResolver(upstream Resolver, store storage.KV, maxAge time.Duration) *CachedResolver {
	return &CachedResolver{Upstream: upstream, Store: store, MaxAge: maxAge}
}

func (c *CachedResolver) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Lookup 返回结果和缓存状态。未命中时调用上游，
// 成功结果异步写回缓存（写失败只记日志，不影响本次结果）。
func (c *CachedResolver) Lookup(ctx context.Context, domain string) (*Result, CacheStatus, error) {
	key := cacheKeyPrefix + domain

	if data, err := c.Store.Get(ctx, key); err == nil {
		var entry cacheEntry
		if err := json.Unmarshal(data, &entry); err == nil && entry.Result != nil {
			if c.now().Sub(entry.WrittenAt) < c.MaxAge {
				return entry.Result, CacheHit, nil
			}
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("[whois] cache_read_failed domain=%s err=%v", domain, err)
	}

	result, err := c.Upstream.Resolve(ctx, domain)
	if err != nil {
		return nil, CacheMiss, err
	}

	entry := cacheEntry{Result: result, WrittenAt: c.now()}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("[whois] cache_encode_failed domain=%s err=%v", domain, err)
		return result, CacheMiss, nil
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Store.Put(writeCtx, key, data); err != nil {
			log.Printf("[whois] cache_write_failed domain=%s err=%v", domain, err)
		}
	}()

	return result, CacheMiss, nil
}

// Resolve 实现 Resolver，忽略缓存状态。
func (c *CachedResolver) Resolve(ctx context.Context, domain string) (*Result, error) {
	result, _, err := c.Lookup(ctx, domain)
	return result, err
}

// Flush 等待所有挂起的缓存回写完成，退出前调用。
func (c *CachedResolver) Flush() {
	c.wg.Wait()
}
