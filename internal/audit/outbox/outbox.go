// Package outbox implements the transactional outbox used by the audit trail.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one pending or published outbox row.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

// Store defines the outbox persistence operations. Implementations must be
// safe for concurrent use.
type Store interface {
	// Append adds a new entry to the outbox.
	Append(ctx context.Context, entry *Entry) error

	// FetchUnprocessed returns up to limit unprocessed entries, oldest
	// first. Implementations should lock fetched rows (FOR UPDATE SKIP
	// LOCKED) so concurrent workers never double-publish a batch.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	// MarkProcessed marks an entry as successfully published.
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	// CountPending returns the number of unprocessed entries.
	CountPending(ctx context.Context) (int64, error)

	// DeleteProcessedBefore removes published entries older than the
	// cutoff and returns the number deleted.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
