package utils

import (
	"sync"
	"time"
)

// TTLCache 进程内字符串缓存，读多写少的热点数据用
// 使用 sync.Map 保证并发安全
type TTLCache struct {
	items sync.Map
	ttl   time.Duration
}

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration int64
}

// NewTTLCache 创建缓存，ttl <= 0 时取 10 分钟
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TTLCache{ttl: ttl}
}

// Set 写入缓存
func (c *TTLCache) Set(key, value string) {
	exp := time.Now().Add(c.ttl).UnixNano()

	c.items.Store(key, cacheItem{
		value:      value,
		expiration: exp,
	})
}

// Get 获取缓存并验证是否过期
func (c *TTLCache) Get(key string) (string, bool) {
	val, ok := c.items.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)

	// 检查是否过期
	if time.Now().UnixNano() > item.expiration {
		c.items.Delete(key) // 懒删除
		return "", false
	}

	return item.value, true
}

// Delete 删除缓存 (写路径主动失效)
func (c *TTLCache) Delete(key string) {
	c.items.Delete(key)
}
