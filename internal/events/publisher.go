package events

//go:generate mockgen -source=publisher.go -destination=mocks/mocks.go -package=mocks Publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"incentra/internal/events/metrics"
)

// Publisher is the port the matching service emits events through.
type Publisher interface {
	Emit(ctx context.Context, eventType string, payload any) error
}

// OutboxPublisher appends events to the outbox store. Delivery to the broker
// happens asynchronously in the Relay.
type OutboxPublisher struct {
	store   Store
	metrics *metrics.Metrics
}

// NewOutboxPublisher constructs a store-backed publisher.
func NewOutboxPublisher(store Store, m *metrics.Metrics) *OutboxPublisher {
	return &OutboxPublisher{store: store, metrics: m}
}

func (p *OutboxPublisher) Emit(ctx context.Context, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	if err := p.store.Append(ctx, Event{Type: eventType, Payload: raw}); err != nil {
		return err
	}
	p.metrics.IncrementAppended(eventType)
	return nil
}

// NopPublisher discards events. Used when eventing is not configured.
type NopPublisher struct{}

func (NopPublisher) Emit(ctx context.Context, eventType string, payload any) error {
	return nil
}
