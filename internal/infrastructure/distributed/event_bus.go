package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"streamgrid/internal/core/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventType represents the type of event
type EventType string

const (
	EventSessionCreated   EventType = "session.created"
	EventSessionDestroyed EventType = "session.destroyed"
	EventSnapshotSaved    EventType = "snapshot.saved"
	EventSnapshotDeleted  EventType = "snapshot.deleted"
	EventStreamEnded      EventType = "stream.ended"
)

// Event represents a distributed event
type Event struct {
	Type       EventType        `json:"type"`
	InstanceID string           `json:"instance_id"`
	Timestamp  time.Time        `json:"timestamp"`
	SessionID  domain.SessionID `json:"session_id,omitempty"`
	StreamID   domain.StreamID  `json:"stream_id,omitempty"`
	Snapshot   string           `json:"snapshot,omitempty"`
	Payload    json.RawMessage  `json:"payload,omitempty"`
}

// EventBus provides event publishing and subscription for coordination
// between layout service instances.
type EventBus struct {
	client     *redis.Client
	instanceID string
	logger     *zap.SugaredLogger
	pubsub     *redis.PubSub
	channels   []string
}

// NewEventBus creates a new event bus
func NewEventBus(
	client *redis.Client,
	instanceID string,
	logger *zap.SugaredLogger,
) *EventBus {
	return &EventBus{
		client:     client,
		instanceID: instanceID,
		logger:     logger,
		channels:   []string{"streamgrid:events"},
	}
}

// Publish publishes an event to the event bus
func (eb *EventBus) Publish(ctx context.Context, event *Event) error {
	event.InstanceID = eb.instanceID
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := eb.channels[0]
	if err := eb.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	eb.logger.Debugw("published event",
		"type", event.Type,
		"session_id", event.SessionID,
		"snapshot", event.Snapshot,
	)

	return nil
}

// Subscribe subscribes to events and calls handler for each event.
// Events published by this instance are skipped.
func (eb *EventBus) Subscribe(ctx context.Context, handler func(*Event) error) error {
	if eb.pubsub != nil {
		return fmt.Errorf("already subscribed")
	}

	eb.pubsub = eb.client.Subscribe(ctx, eb.channels...)
	defer eb.pubsub.Close()

	ch := eb.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				eb.logger.Warnw("failed to unmarshal event",
					"error", err,
					"payload", msg.Payload,
				)
				continue
			}

			if event.InstanceID == eb.instanceID {
				continue
			}

			if err := handler(&event); err != nil {
				eb.logger.Warnw("error handling event",
					"type", event.Type,
					"error", err,
				)
			}
		}
	}
}

// PublishSessionCreated publishes a session created event
func (eb *EventBus) PublishSessionCreated(ctx context.Context, sessionID domain.SessionID) error {
	return eb.Publish(ctx, &Event{
		Type:      EventSessionCreated,
		SessionID: sessionID,
	})
}

// PublishSessionDestroyed publishes a session destroyed event
func (eb *EventBus) PublishSessionDestroyed(ctx context.Context, sessionID domain.SessionID) error {
	return eb.Publish(ctx, &Event{
		Type:      EventSessionDestroyed,
		SessionID: sessionID,
	})
}

// PublishSnapshotSaved publishes a snapshot saved event so peers can drop
// their cached copy of the name.
func (eb *EventBus) PublishSnapshotSaved(ctx context.Context, name string) error {
	return eb.Publish(ctx, &Event{
		Type:     EventSnapshotSaved,
		Snapshot: name,
	})
}

// PublishSnapshotDeleted publishes a snapshot deleted event
func (eb *EventBus) PublishSnapshotDeleted(ctx context.Context, name string) error {
	return eb.Publish(ctx, &Event{
		Type:     EventSnapshotDeleted,
		Snapshot: name,
	})
}

// PublishStreamEnded publishes a stream ended event for a session
func (eb *EventBus) PublishStreamEnded(ctx context.Context, sessionID domain.SessionID, streamID domain.StreamID) error {
	return eb.Publish(ctx, &Event{
		Type:      EventStreamEnded,
		SessionID: sessionID,
		StreamID:  streamID,
	})
}

// Close closes the event bus
func (eb *EventBus) Close() error {
	if eb.pubsub != nil {
		return eb.pubsub.Close()
	}
	return nil
}
