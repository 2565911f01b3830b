package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

const subscriptionBuffer = 16

// ChangeFeed implements usecase.ChangeFeed over Redis Pub/Sub with one
// channel per user.
type ChangeFeed struct {
	client redis.UniversalClient
	prefix string
	logger zerolog.Logger
}

// NewChangeFeed creates a new ChangeFeed.
func NewChangeFeed(client redis.UniversalClient, logger zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{
		client: client,
		prefix: "changes:",
		logger: logger,
	}
}

func (f *ChangeFeed) channel(userID string) string {
	return f.prefix + userID
}

// Publish sends event to the subscribers of its user.
func (f *ChangeFeed) Publish(ctx context.Context, event domain.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel(event.UserID), payload).Err()
}

// Subscribe opens a feed of userID's change events. The subscription is
// confirmed before Subscribe returns, so no event published afterwards is lost.
func (f *ChangeFeed) Subscribe(ctx context.Context, userID string) (usecase.Subscription, error) {
	pubsub := f.client.Subscribe(ctx, f.channel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to change feed: %w", err)
	}

	sub := &subscription{
		pubsub: pubsub,
		events: make(chan domain.ChangeEvent, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	go sub.forward(f.logger)

	return sub, nil
}

type subscription struct {
	pubsub *redis.PubSub
	events chan domain.ChangeEvent
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) forward(logger zerolog.Logger) {
	defer close(s.events)

	for msg := range s.pubsub.Channel() {
		var event domain.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			logger.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed change event")
			continue
		}

		select {
		case s.events <- event:
		case <-s.done:
			return
		default:
			// Slow consumer. Clients refetch on any event, so a dropped
			// notification is covered by the next one.
			logger.Debug().Str("channel", msg.Channel).Msg("change feed subscriber is behind, dropping event")
		}
	}
}

func (s *subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
