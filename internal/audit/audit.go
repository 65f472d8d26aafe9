// Package audit records verification lifecycle events. Events are written to
// a transactional outbox table and published to Kafka by a background worker,
// so a broker outage never fails the user-facing operation.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names one verification lifecycle transition.
type EventType string

const (
	EventSessionStarted        EventType = "session_started"
	EventPreviewSaved          EventType = "preview_saved"
	EventVerificationCompleted EventType = "verification_completed"
	EventVerificationFailed    EventType = "verification_failed"
)

// Event is one audit trail entry. Client metadata is filled by the recorder
// from the request context.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	SDKToken  string    `json:"sdkToken,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder accepts lifecycle events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}
