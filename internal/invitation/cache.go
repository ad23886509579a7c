package invitation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const publicCacheTTL = 5 * time.Minute

// Cache keeps public invitation reads out of the database
type Cache interface {
	Get(ctx context.Context, id string) (*Invitation, bool)
	Set(ctx context.Context, inv *Invitation)
	Delete(ctx context.Context, id string)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: publicCacheTTL}
}

func cacheKey(id string) string { return "invitation:" + id }

func (c *RedisCache) Get(ctx context.Context, id string) (*Invitation, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var inv Invitation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, false
	}
	return &inv, true
}

func (c *RedisCache) Set(ctx context.Context, inv *Invitation) {
	raw, err := json.Marshal(inv)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(inv.ID), raw, c.ttl)
}

func (c *RedisCache) Delete(ctx context.Context, id string) {
	c.client.Del(ctx, cacheKey(id))
}

// noCache is used when Redis is unavailable
type noCache struct{}

func (noCache) Get(context.Context, string) (*Invitation, bool) { return nil, false }
func (noCache) Set(context.Context, *Invitation)                {}
func (noCache) Delete(context.Context, string)                  {}
