package settings

import (
	"context"
)

// Store persists raw settings documents as JSON keyed by fixed identifiers.
// Get returns (nil, nil) when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
