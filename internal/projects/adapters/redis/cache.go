package redis

import (
	"context"
	"time"

	"event-telemetry/internal/projects/core/domain"
	"event-telemetry/internal/projects/core/ports"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// Cache is a read-through decorator over a ProjectReaderPort. Project
// records change rarely (key rotation, retention updates), so a short TTL
// keeps the hot API-key lookup off Postgres on every ingested batch.
type Cache struct {
	base   ports.ProjectReaderPort
	client *redis.Client
	ttl    time.Duration
}

func NewCache(base ports.ProjectReaderPort, client *redis.Client, ttl time.Duration) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, client: client, ttl: ttl}
}

var _ ports.ProjectReaderPort = (*Cache)(nil)

func (c *Cache) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Project, error) {
	if p, ok := c.load(ctx, apiKeyCacheKey(apiKey)); ok {
		return p, nil
	}

	p, err := c.base.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	c.store(ctx, apiKeyCacheKey(apiKey), p)
	return p, nil
}

func (c *Cache) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if p, ok := c.load(ctx, projectCacheKey(projectID)); ok {
		return p, nil
	}

	p, err := c.base.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, projectCacheKey(projectID), p)
	return p, nil
}

func (c *Cache) load(ctx context.Context, key string) (*domain.Project, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing reader without failing.
			_ = c.client.Del(ctx, key).Err()
		}
		return nil, false
	}
	var p domain.Project
	if err := sonic.Unmarshal(data, &p); err != nil {
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}
	return &p, true
}

func (c *Cache) store(ctx context.Context, key string, p *domain.Project) {
	if c.client == nil {
		return
	}
	data, err := sonic.Marshal(p)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

func apiKeyCacheKey(apiKey string) string {
	return "project:apikey:" + apiKey
}

func projectCacheKey(projectID string) string {
	return "project:id:" + projectID
}
