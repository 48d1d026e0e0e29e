package geo

import (
	"context"
	"sync"
	"time"
)

// CountryCache кэш результатов геолокации с TTL по IP. Кэшируются и
// отрицательные результаты (nil), чтобы не долбить внешний API приватными
// и неизвестными адресами.
type CountryCache interface {
	Get(ctx context.Context, ip string) (*Country, bool)
	Set(ctx context.Context, ip string, country *Country)
}

type memoryCacheItem struct {
	country *Country
	expires time.Time
}

// MemoryCache внутрипроцессный кэш стран. Используется когда Redis не
// сконфигурирован.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryCacheItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryCacheItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, ip string) (*Country, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[ip]
	if !ok {
		return nil, false
	}
	if c.now().After(item.expires) {
		delete(c.items, ip)
		return nil, false
	}
	return item.country, true
}

func (c *MemoryCache) Set(_ context.Context, ip string, country *Country) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[ip] = memoryCacheItem{country: country, expires: c.now().Add(c.ttl)}
}
