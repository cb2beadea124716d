// Package events wraps NATS JetStream for the two streams spec.md names:
// BOOKING_EVENTS and DELETION_EVENTS. Every consumer group is a durable
// JetStream consumer with explicit ack, so a message claimed-but-unacked by
// a prior consumer incarnation is redelivered on restart, and instances in
// the same group queue-compete for a stream's messages.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/slotwise/resource-service/pkg/logger"
)

// Event subjects, per spec.md §4.5.
const (
	BookingCreated       = "booking.created"
	BookingUpdated       = "booking.updated"
	BookingCancelled     = "booking.cancelled"
	BookingStatusChanged = "booking.status_changed"

	ResourceDeleted = "resource.deleted"
	UserDeleted     = "user.deleted"
	TenantDeleted   = "tenant.deleted"
)

const (
	BookingEventsStream  = "BOOKING_EVENTS"
	DeletionEventsStream = "DELETION_EVENTS"
)

var bookingSubjects = []string{BookingCreated, BookingUpdated, BookingCancelled, BookingStatusChanged}
var deletionSubjects = []string{ResourceDeleted, UserDeleted, TenantDeleted}

// Metadata is the envelope's metadata block, per spec.md §6.
type Metadata struct {
	TenantID     string    `json:"tenant_id"`
	EmittedAt    time.Time `json:"emitted_at"`
	EventVersion int       `json:"event_version"`
}

// Envelope is the exact wire shape spec.md §6 requires for every event.
type Envelope struct {
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Metadata  Metadata        `json:"metadata"`
}

// Connect dials NATS and returns the raw connection; callers derive a
// JetStream context from it. A connection failure is not fatal to the
// caller — services run with a NullPublisher and no consumers in that case.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// EnsureStreams idempotently creates the two streams this system needs.
func EnsureStreams(js nats.JetStreamContext) error {
	streams := []*nats.StreamConfig{
		{Name: BookingEventsStream, Subjects: bookingSubjects, Storage: nats.FileStorage, Retention: nats.LimitsPolicy},
		{Name: DeletionEventsStream, Subjects: deletionSubjects, Storage: nats.FileStorage, Retention: nats.LimitsPolicy},
	}
	for _, cfg := range streams {
		if _, err := js.StreamInfo(cfg.Name); err != nil {
			if _, err := js.AddStream(cfg); err != nil {
				return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
			}
			continue
		}
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("failed to update stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// Publisher publishes domain events onto their stream.
type Publisher interface {
	Publish(eventType, tenantID string, payload interface{}) error
	Close()
}

type jetStreamPublisher struct {
	js     nats.JetStreamContext
	logger logger.Logger
}

// NewPublisher creates a JetStream-backed publisher. js must have had
// EnsureStreams run against it already.
func NewPublisher(js nats.JetStreamContext, logger logger.Logger) Publisher {
	return &jetStreamPublisher{js: js, logger: logger}
}

func (p *jetStreamPublisher) Publish(eventType, tenantID string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	envelope := Envelope{
		EventType: eventType,
		Payload:   raw,
		Metadata: Metadata{
			TenantID:     tenantID,
			EmittedAt:    time.Now().UTC(),
			EventVersion: 1,
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	if _, err := p.js.Publish(eventType, data); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}
	p.logger.Debug("published event", "event_type", eventType, "tenant_id", tenantID)
	return nil
}

func (p *jetStreamPublisher) Close() {}

// NullPublisher is a no-op publisher for development when NATS is unavailable.
type NullPublisher struct {
	Logger logger.Logger
}

func (p *NullPublisher) Publish(eventType, tenantID string, payload interface{}) error {
	p.Logger.Debug("event publish skipped, no NATS connection", "event_type", eventType, "tenant_id", tenantID)
	return nil
}

func (p *NullPublisher) Close() {}

// Handler processes one decoded event. Returning an error leaves the
// message unacked so it is redelivered.
type Handler func(ctx context.Context, envelope Envelope) error

// Consumer pulls messages for one durable, named consumer group.
type Consumer struct {
	js       nats.JetStreamContext
	sub      *nats.Subscription
	logger   logger.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Subscribe creates (or reattaches to) a durable pull consumer named
// groupName on stream, bound to the given subject filter, and begins
// delivering messages to handler on a background goroutine. Multiple
// processes calling Subscribe with the same groupName/stream/subject
// queue-compete, matching spec.md's consumer-group semantics.
func Subscribe(js nats.JetStreamContext, stream, groupName, subject string, logger logger.Logger, handler Handler) (*Consumer, error) {
	_, err := js.AddConsumer(stream, &nats.ConsumerConfig{
		Durable:       groupName,
		FilterSubject: subject,
		AckPolicy:     nats.AckExplicitPolicy,
		DeliverPolicy: nats.DeliverAllPolicy,
		AckWait:       30 * time.Second,
	})
	if err != nil && err != nats.ErrConsumerNameAlreadyInUse {
		return nil, fmt.Errorf("failed to create consumer %s on %s: %w", groupName, stream, err)
	}

	sub, err := js.PullSubscribe(subject, groupName, nats.BindStream(stream))
	if err != nil {
		return nil, fmt.Errorf("failed to bind pull subscription %s/%s: %w", stream, groupName, err)
	}

	c := &Consumer{js: js, sub: sub, logger: logger, stopCh: make(chan struct{}), doneCh: make(chan struct{})}
	go c.loop(handler)
	return c, nil
}

func (c *Consumer) loop(handler Handler) {
	defer close(c.doneCh)
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		msgs, err := c.sub.Fetch(10, nats.MaxWait(2*time.Second))
		if err != nil {
			if err != nats.ErrTimeout {
				c.logger.Warn("consumer fetch failed", "error", err)
			}
			continue
		}

		for _, msg := range msgs {
			var envelope Envelope
			if err := json.Unmarshal(msg.Data, &envelope); err != nil {
				c.logger.Error("failed to unmarshal event envelope, acking to drop poison message", "error", err)
				msg.Ack()
				continue
			}
			if err := handler(context.Background(), envelope); err != nil {
				c.logger.Error("event handler failed, leaving unacked for redelivery", "event_type", envelope.EventType, "error", err)
				continue
			}
			msg.Ack()
		}
	}
}

// Stop signals the consumer loop to exit and waits for in-flight handlers
// to finish, honoring the shutdown-drain requirement of spec.md §5.
func (c *Consumer) Stop() {
	close(c.stopCh)
	<-c.doneCh
}
