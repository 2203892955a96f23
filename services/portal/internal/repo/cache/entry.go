package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Entry is a versioned key resolved by Get. Set writes to that key, so a
// value read from the database before an Invalidate lands under a retired
// version and is never served.
type Entry struct {
	key string
}

// Valid is false when no key could be resolved; Set is then a no-op.
func (e Entry) Valid() bool {
	return e.key != ""
}

func resolveEntry(ctx context.Context, client *redis.Client, versionKey, prefix, suffix string) (Entry, error) {
	version, err := client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, err
	}
	return Entry{key: fmt.Sprintf("%s:v%d%s", prefix, version, suffix)}, nil
}
