package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"incentra/internal/events/metrics"
)

// Producer is the broker-facing side of the relay. *kgo.Client satisfies it.
type Producer interface {
	ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults
}

// Relay drains the outbox to Kafka on an interval. Events are marked
// published only after the broker acknowledges the whole batch, so a crash
// between produce and mark can deliver an event twice; consumers must
// de-duplicate on event ID.
type Relay struct {
	store     Store
	producer  Producer
	topic     string
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewRelay constructs an outbox relay. batch bounds how many events one
// drain pass publishes; zero or negative means 100.
func NewRelay(store Store, producer Producer, topic string, interval time.Duration, batch int, logger *slog.Logger, m *metrics.Metrics) *Relay {
	if batch <= 0 {
		batch = 100
	}
	return &Relay{
		store:     store,
		producer:  producer,
		topic:     topic,
		interval:  interval,
		batchSize: batch,
		logger:    logger,
		metrics:   m,
	}
}

// Run drains the outbox until ctx is cancelled. Drain failures are logged
// and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "outbox relay started",
		"topic", r.topic,
		"interval", r.interval.String())

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.Drain(ctx); err != nil {
				r.metrics.IncrementRelayError()
				r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// Drain publishes one batch of unpublished events and marks them delivered.
func (r *Relay) Drain(ctx context.Context) error {
	pending, err := r.store.ListUnpublished(ctx, r.batchSize)
	if err != nil {
		return err
	}
	r.metrics.SetPending(len(pending))
	if len(pending) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(pending))
	for _, ev := range pending {
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(ev.ID.String()),
			Value: ev.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "event_type", Value: []byte(ev.Type)},
			},
		})
	}

	results := r.producer.ProduceSync(ctx, records...)
	if err := results.FirstErr(); err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(pending))
	for _, ev := range pending {
		ids = append(ids, ev.ID)
		r.metrics.IncrementPublished(ev.Type)
	}
	if err := r.store.MarkPublished(ctx, ids); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "outbox batch published",
		"topic", r.topic,
		"count", len(pending))
	return nil
}
