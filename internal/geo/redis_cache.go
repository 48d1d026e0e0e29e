package geo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisKeyPrefix = "geo:country:"

// negativeMarker хранится вместо JSON для закэшированного отсутствия страны.
const negativeMarker = "-"

// RedisCache кэш стран в Redis с TTL. Ошибки Redis не фатальны: промах кэша
// просто приводит к повторному внешнему запросу.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.WithField("module", "geo/rediscache"),
	}
}

func (c *RedisCache) Get(ctx context.Context, ip string) (*Country, bool) {
	val, err := c.client.Get(ctx, redisKeyPrefix+ip).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("redis get failed")
		}
		return nil, false
	}
	if val == negativeMarker {
		return nil, true
	}

	var country Country
	if unmarshalErr := json.Unmarshal([]byte(val), &country); unmarshalErr != nil {
		c.logger.WithError(unmarshalErr).Warnf("corrupted cache entry for ip %s", ip)
		return nil, false
	}
	return &country, true
}

func (c *RedisCache) Set(ctx context.Context, ip string, country *Country) {
	payload := negativeMarker
	if country != nil {
		raw, marshalErr := json.Marshal(country)
		if marshalErr != nil {
			c.logger.WithError(marshalErr).Warn("marshal country failed")
			return
		}
		payload = string(raw)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+ip, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("redis set failed")
	}
}
