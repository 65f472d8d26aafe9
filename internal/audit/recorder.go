package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"ekyc-gateway/internal/audit/outbox"
	"ekyc-gateway/pkg/requestcontext"
)

// OutboxRecorder writes events to the outbox table. The outbox worker picks
// them up and publishes to Kafka; Kafka is the consumer-facing source of truth.
type OutboxRecorder struct {
	store outbox.Store
}

func NewOutboxRecorder(store outbox.Store) *OutboxRecorder {
	return &OutboxRecorder{store: store}
}

// Record fills event metadata from the request context and appends the event
// to the outbox.
func (r *OutboxRecorder) Record(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	aggregateID := event.UserID
	if aggregateID == "" {
		aggregateID = event.ID.String()
	}

	entry := &outbox.Entry{
		ID:            event.ID,
		AggregateType: "verification",
		AggregateID:   aggregateID,
		EventType:     string(event.Type),
		Payload:       payload,
		CreatedAt:     event.Timestamp,
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
