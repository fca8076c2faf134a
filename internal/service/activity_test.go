package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/cache"
)

func TestActivityFeedRecordsNewestFirst(t *testing.T) {
	store := cache.NewStore(cache.Options{DefaultTTL: time.Minute})
	feed := NewActivityFeed(store, 20)
	ctx := context.Background()

	feed.Record(ctx, ActivityEvent{At: 100, Kind: ActivityLogin, Username: "jdoe"})
	feed.Record(ctx, ActivityEvent{At: 200, Kind: ActivityLogout, Username: "jdoe", Detail: "User-Request"})

	events := feed.Recent(ctx)
	require.Len(t, events, 2)
	assert.Equal(t, ActivityLogout, events[0].Kind)
	assert.Equal(t, int64(200), events[0].At)
	assert.Equal(t, ActivityLogin, events[1].Kind)
}

func TestActivityFeedTrimsToLimit(t *testing.T) {
	store := cache.NewStore(cache.Options{DefaultTTL: time.Minute})
	feed := NewActivityFeed(store, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		feed.Record(ctx, ActivityEvent{At: int64(i), Kind: ActivityLogin, Username: fmt.Sprintf("u%d", i)})
	}

	events := feed.Recent(ctx)
	require.Len(t, events, 3)
	assert.Equal(t, "u5", events[0].Username)
	assert.Equal(t, "u3", events[2].Username)
}

func TestActivityFeedNilStoreIsNoop(t *testing.T) {
	feed := NewActivityFeed(nil, 20)
	feed.Record(context.Background(), ActivityEvent{Kind: ActivityLogin})
	assert.Nil(t, feed.Recent(context.Background()))
}
