package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"premier-open-group/services/portal/internal/entity"

	"github.com/redis/go-redis/v9"
)

// ProfileCache keeps recently resolved profiles for the access gate, which
// looks one up on every protected request. Like ContentCache it keys entries
// by a per-profile version, so a lookup racing an Invalidate cannot store
// the row it read before the change.
type ProfileCache interface {
	Get(ctx context.Context, id string) (Entry, *entity.Profile, bool, error)
	Set(ctx context.Context, entry Entry, profile *entity.Profile) error
	Invalidate(ctx context.Context, id string) error
}

type redisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) ProfileCache {
	if client == nil {
		return noopProfileCache{}
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisProfileCache{client: client, ttl: ttl}
}

func profileVersionKey(id string) string {
	return "profile:" + id + ":version"
}

func (c *redisProfileCache) Get(ctx context.Context, id string) (Entry, *entity.Profile, bool, error) {
	entry, err := resolveEntry(ctx, c.client, profileVersionKey(id), "profile:"+id, "")
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

	var profile entity.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return entry, nil, false, err
	}
	return entry, &profile, true, nil
}

func (c *redisProfileCache) Set(ctx context.Context, entry Entry, profile *entity.Profile) error {
	if !entry.Valid() {
		return nil
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, entry.key, data, c.ttl).Err()
}

func (c *redisProfileCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Incr(ctx, profileVersionKey(id)).Err()
}

type noopProfileCache struct{}

func (noopProfileCache) Get(context.Context, string) (Entry, *entity.Profile, bool, error) {
	return Entry{}, nil, false, nil
}

func (noopProfileCache) Set(context.Context, Entry, *entity.Profile) error { return nil }

func (noopProfileCache) Invalidate(context.Context, string) error { return nil }
