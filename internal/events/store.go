package events

import (
	"context"

	"github.com/google/uuid"
)

// Store is the outbox persistence port.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListUnpublished returns up to limit events with no published timestamp,
	// oldest first.
	ListUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
