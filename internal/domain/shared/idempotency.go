package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks processed event IDs so that redelivered provider
// events are not handled twice. Implementations must make MarkProcessed
// atomic: two concurrent calls with the same ID must not both return true.
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed with a TTL.
	// Returns true if the event was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed.
	IsProcessed(ctx context.Context, eventID string) (bool, error)
}
