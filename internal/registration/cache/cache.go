// Package cache keeps a short-lived redis snapshot of the event listing.
// It is a read-side convenience only: the admission controller never consults
// it, and a stale or missing snapshot costs one extra database query.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-registration/internal/models"
)

const eventListKey = "events:list"

type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: client, TTL: ttl}
}

// GetEventList returns the cached listing and whether it was present.
func (c *Cache) GetEventList(ctx context.Context) ([]models.Event, bool) {
	if c == nil || c.Client == nil {
		return nil, false
	}

	raw, err := c.Client.Get(ctx, eventListKey).Result()
	if err != nil {
		return nil, false
	}

	var events []models.Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		// Unreadable snapshot; drop it so the next write starts clean.
		c.Client.Del(ctx, eventListKey)
		return nil, false
	}
	return events, true
}

// SetEventList stores the listing snapshot. Failures are ignored; the cache is
// best effort.
func (c *Cache) SetEventList(ctx context.Context, events []models.Event) {
	if c == nil || c.Client == nil {
		return
	}

	raw, err := json.Marshal(events)
	if err != nil {
		return
	}
	c.Client.Set(ctx, eventListKey, raw, c.TTL)
}

// InvalidateEventList drops the snapshot after any write that changes an
// event's registered count or the set of events.
func (c *Cache) InvalidateEventList(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, eventListKey).Err()
}
