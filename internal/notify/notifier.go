// Package notify emits notification intents for the external delivery
// service. An intent describes an event (new take, new reaction); delivering
// it is somebody else's job, so publishing is best-effort and never feeds
// back into the mutation that raised it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Hoossayn/hottakes-backend/internal/db"
)

// ContentType tags what kind of event an intent describes.
type ContentType string

const (
	ContentTypePost     ContentType = "Post"
	ContentTypeReaction ContentType = "Reaction"
)

// IntentContent carries the event's subject.
type IntentContent struct {
	TakeID   string          `json:"hottakeId"`
	Reaction db.ReactionKind `json:"reaction,omitempty"`
}

// Intent is the immutable payload handed to the external notifier.
type Intent struct {
	RecipientUsername string        `json:"recipientUsername"`
	Username          string        `json:"username"`
	ContentType       ContentType   `json:"contentType"`
	Title             string        `json:"title"`
	Content           IntentContent `json:"content"`
}

// TakeCreated builds the intent raised when a direct take lands in
// recipient's inbox. sender is the resolved sender or "anonymous".
func TakeCreated(recipient, sender, takeID string) Intent {
	return Intent{
		RecipientUsername: recipient,
		Username:          sender,
		ContentType:       ContentTypePost,
		Title:             fmt.Sprintf("Received a hot take for %s", recipient),
		Content:           IntentContent{TakeID: takeID},
	}
}

// ReactionAdded builds the intent raised when actor attaches a reaction to a
// take. Addressed to the take's sender.
func ReactionAdded(takeSender, actor string, takeID string, kind db.ReactionKind) Intent {
	return Intent{
		RecipientUsername: takeSender,
		Username:          actor,
		ContentType:       ContentTypeReaction,
		Title:             fmt.Sprintf("%s reacted (%s) to your take", actor, kind),
		Content:           IntentContent{TakeID: takeID, Reaction: kind},
	}
}

// Notifier accepts intents for delivery.
type Notifier interface {
	Publish(ctx context.Context, intent Intent) error
}

// QueueKey is the redis list the delivery worker consumes from.
const QueueKey = "notifications:queue"

// RedisNotifier pushes intents onto a redis queue.
type RedisNotifier struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisNotifier(client *redis.Client, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Publish enqueues the intent as JSON. Errors are returned for the caller to
// log; they must never abort the triggering mutation.
func (n *RedisNotifier) Publish(ctx context.Context, intent Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}
	if err := n.client.RPush(ctx, QueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue intent: %w", err)
	}
	n.logger.Debug("notification intent queued",
		"recipient", intent.RecipientUsername,
		"type", intent.ContentType,
	)
	return nil
}

// NopNotifier drops every intent. Used by the seeder and in tests that do not
// care about notifications.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Intent) error { return nil }
