package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"premier-open-group/services/portal/internal/content"

	"github.com/redis/go-redis/v9"
)

// ContentCache holds list results per content type and filter. Each type has
// a version counter that is part of every key, so Invalidate retires all of
// a type's entries at once and leaves other types untouched.
type ContentCache interface {
	Get(ctx context.Context, t content.Type, filter content.Filter) (Entry, []content.Record, bool, error)
	Set(ctx context.Context, entry Entry, records []content.Record) error
	Invalidate(ctx context.Context, t content.Type) error
}

type redisContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContentCache returns a Redis-backed cache, or one that always misses
// when client is nil.
func NewContentCache(client *redis.Client, ttl time.Duration) ContentCache {
	if client == nil {
		return noopContentCache{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisContentCache{client: client, ttl: ttl}
}

func versionKey(t content.Type) string {
	return "content:" + string(t) + ":version"
}

func (c *redisContentCache) Get(ctx context.Context, t content.Type, filter content.Filter) (Entry, []content.Record, bool, error) {
	entry, err := resolveEntry(ctx, c.client, versionKey(t), "content:"+string(t), ":"+filter.CacheKey())
	if err != nil {
		return Entry{}, nil, false, err
	}

	data, err := c.client.Get(ctx, entry.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entry, nil, false, nil
	}
	if err != nil {
		return entry, nil, false, err
	}

	var records []content.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return entry, nil, false, err
	}
	return entry, records, true, nil
}

func (c *redisContentCache) Set(ctx context.Context, entry Entry, records []content.Record) error {
	if !entry.Valid() {
		return nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, entry.key, data, c.ttl).Err()
}

func (c *redisContentCache) Invalidate(ctx context.Context, t content.Type) error {
	return c.client.Incr(ctx, versionKey(t)).Err()
}

type noopContentCache struct{}

func (noopContentCache) Get(context.Context, content.Type, content.Filter) (Entry, []content.Record, bool, error) {
	return Entry{}, nil, false, nil
}

func (noopContentCache) Set(context.Context, Entry, []content.Record) error {
	return nil
}

func (noopContentCache) Invalidate(context.Context, content.Type) error { return nil }
