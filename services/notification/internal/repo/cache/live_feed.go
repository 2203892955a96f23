package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"premier-open-group/services/notification/internal/entity"

	"github.com/redis/go-redis/v9"
)

// LiveFeed pushes stored notifications to members who have a socket open.
// A nil client turns it into a no-op.
type LiveFeed struct {
	client *redis.Client
}

func NewLiveFeed(client *redis.Client) *LiveFeed {
	return &LiveFeed{client: client}
}

func Channel(userID string) string {
	return fmt.Sprintf("member_notifications:%s", userID)
}

// Enabled reports whether live delivery is available.
func (f *LiveFeed) Enabled() bool {
	return f.client != nil
}

func (f *LiveFeed) Publish(ctx context.Context, notification *entity.MemberNotification) error {
	if f.client == nil {
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return f.client.Publish(ctx, Channel(notification.UserID), payload).Err()
}

// Subscribe must only be called when Enabled is true.
func (f *LiveFeed) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return f.client.Subscribe(ctx, Channel(userID))
}
