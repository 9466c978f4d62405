package catalog

import (
	"context"
	"encoding/json"
	"time"

	"ms-booking/internal/models"

	"github.com/go-redis/redis/v8"
)

const eventCacheTTL = 5 * time.Minute

// EventCache keeps published event details in Redis so browse traffic
// doesn't hammer Postgres. Mutations invalidate the key.
type EventCache struct {
	Client *redis.Client
}

func NewEventCache(client *redis.Client) *EventCache {
	return &EventCache{Client: client}
}

func (c *EventCache) key(eventID string) string {
	return "event:" + eventID
}

func (c *EventCache) Get(ctx context.Context, eventID string) (*models.Event, bool) {
	val, err := c.Client.Get(ctx, c.key(eventID)).Bytes()
	if err != nil {
		return nil, false
	}

	var event models.Event
	if err := json.Unmarshal(val, &event); err != nil {
		return nil, false
	}
	return &event, true
}

func (c *EventCache) Set(ctx context.Context, event *models.Event) {
	val, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, c.key(event.ID), val, eventCacheTTL).Err()
}

func (c *EventCache) Invalidate(ctx context.Context, eventID string) {
	_ = c.Client.Del(ctx, c.key(eventID)).Err()
}
