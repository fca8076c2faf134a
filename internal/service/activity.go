package service

import (
	"context"
	"sync"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/cache"
)

// Activity event kinds shown in the dashboard feed.
const (
	ActivityLogin      = "login"
	ActivityLogout     = "logout"
	ActivityDisconnect = "disconnect"
)

const activityKey = "activity:recent"

// ActivityEvent is one line in the recent-activity feed.
type ActivityEvent struct {
	At       int64  `json:"at"`
	Kind     string `json:"kind"`
	Username string `json:"username"`
	MAC      string `json:"mac,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// ActivityFeed keeps the last accounting events in the shared cache so the
// dashboard can show who connected or got cut without hitting the database.
type ActivityFeed struct {
	mu    sync.Mutex
	store cache.Store
	limit int
	ttl   time.Duration
}

// NewActivityFeed builds a feed over the given cache. A nil store disables
// recording; limit <= 0 defaults to 20 entries.
func NewActivityFeed(store cache.Store, limit int) *ActivityFeed {
	if limit <= 0 {
		limit = 20
	}
	return &ActivityFeed{store: store, limit: limit, ttl: time.Hour}
}

// Record prepends an event, trimming the feed to its limit. Feed writes are
// best effort; accounting never fails because the cache did.
func (f *ActivityFeed) Record(ctx context.Context, event ActivityEvent) {
	if f == nil || f.store == nil {
		return
	}
	if event.At == 0 {
		event.At = time.Now().Unix()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var events []ActivityEvent
	_, _ = f.store.GetJSON(ctx, activityKey, &events)
	events = append([]ActivityEvent{event}, events...)
	if len(events) > f.limit {
		events = events[:f.limit]
	}
	_ = f.store.SetJSON(ctx, activityKey, events, f.ttl)
}

// Recent returns the feed, newest first.
func (f *ActivityFeed) Recent(ctx context.Context) []ActivityEvent {
	if f == nil || f.store == nil {
		return nil
	}
	var events []ActivityEvent
	_, _ = f.store.GetJSON(ctx, activityKey, &events)
	return events
}
