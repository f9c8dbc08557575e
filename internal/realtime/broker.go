// Package realtime fans group chat messages out to live subscribers over
// redis pub/sub. Delivery is best effort; the message log in postgres
// stays the source of truth.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cityconnect/internal/models"
)

// Event is the JSON pushed to subscribers.
type Event struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"groupId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"username"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func EventFromMessage(msg models.Message) Event {
	return Event{
		ID:         msg.ID,
		GroupID:    msg.GroupID,
		UserID:     msg.UserID,
		AuthorName: msg.AuthorName,
		Message:    msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
}

func channel(groupID string) string {
	return "group:" + groupID + ":messages"
}

type Broker struct {
	client *redis.Client
}

func NewBroker(client *redis.Client) *Broker {
	return &Broker{client: client}
}

func (b *Broker) Publish(ctx context.Context, msg models.Message) error {
	payload, err := json.Marshal(EventFromMessage(msg))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, channel(msg.GroupID), payload).Err(); err != nil {
		return fmt.Errorf("publish to group %s: %w", msg.GroupID, err)
	}
	return nil
}

type Subscription struct {
	pubsub *redis.PubSub
}

// Subscribe returns once redis has confirmed the subscription, so nothing
// published afterwards is missed.
func (b *Broker) Subscribe(ctx context.Context, groupID string) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channel(groupID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to group %s: %w", groupID, err)
	}
	return &Subscription{pubsub: pubsub}, nil
}

// Messages yields the published events. The channel closes with the
// subscription.
func (s *Subscription) Messages() <-chan *redis.Message {
	return s.pubsub.Channel()
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}
