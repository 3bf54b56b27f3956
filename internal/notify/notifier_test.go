package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hoossayn/hottakes-backend/internal/db"
	"github.com/Hoossayn/hottakes-backend/internal/notify"
)

func setupNotifier(t *testing.T) (*notify.RedisNotifier, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notify.NewRedisNotifier(client, logger), mr
}

func TestPublishEnqueuesIntentPayload(t *testing.T) {
	ctx := context.Background()
	notifier, mr := setupNotifier(t)

	intent := notify.ReactionAdded("alice", "bob", "take-1", db.ReactionSpicy)
	require.NoError(t, notifier.Publish(ctx, intent))

	queued, err := mr.List(notify.QueueKey)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var got notify.Intent
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &got))
	assert.Equal(t, "alice", got.RecipientUsername)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, notify.ContentTypeReaction, got.ContentType)
	assert.Equal(t, "take-1", got.Content.TakeID)
	assert.Equal(t, db.ReactionSpicy, got.Content.Reaction)
	assert.Equal(t, "bob reacted (spicy) to your take", got.Title)
}

func TestTakeCreatedOmitsReactionField(t *testing.T) {
	ctx := context.Background()
	notifier, mr := setupNotifier(t)

	require.NoError(t, notifier.Publish(ctx, notify.TakeCreated("bob", "anonymous", "take-2")))

	queued, err := mr.List(notify.QueueKey)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.NotContains(t, queued[0], "reaction")
	assert.Contains(t, queued[0], `"contentType":"Post"`)
}

func TestPublishSurfacesQueueErrors(t *testing.T) {
	ctx := context.Background()
	notifier, mr := setupNotifier(t)

	mr.Close()
	err := notifier.Publish(ctx, notify.TakeCreated("bob", "alice", "take-3"))
	assert.Error(t, err)
}
