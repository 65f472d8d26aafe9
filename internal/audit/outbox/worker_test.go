package outbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekyc-gateway/internal/platform/kafka/producer"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []*producer.Message
	fail     bool
}

func (f *fakePublisher) Produce(_ context.Context, msg *producer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) published() []*producer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*producer.Message{}, f.messages...)
}

func testEntry(eventType string, createdAt time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: "verification",
		AggregateID:   "user-1",
		EventType:     eventType,
		Payload:       []byte(`{"type":"` + eventType + `"}`),
		CreatedAt:     createdAt,
	}
}

func TestWorkerPublishesAndMarks(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	pub := &fakePublisher{}
	w := NewWorker(store, pub, "ekyc.audit.events", slog.Default())

	entry := testEntry("preview_saved", time.Now())
	require.NoError(t, store.Append(ctx, entry))

	assert.Equal(t, 1, w.poll(ctx))

	msgs := pub.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ekyc.audit.events", msgs[0].Topic)
	assert.Equal(t, entry.ID.String(), string(msgs[0].Key))
	assert.Equal(t, "preview_saved", msgs[0].Headers["event_type"])

	pending, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}

func TestWorkerRetriesFailedPublishes(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	pub := &fakePublisher{fail: true}
	w := NewWorker(store, pub, "ekyc.audit.events", slog.Default())

	require.NoError(t, store.Append(ctx, testEntry("session_started", time.Now())))

	// Broker down: the entry stays pending.
	assert.Equal(t, 0, w.poll(ctx))
	pending, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	// Broker back: the same entry is published.
	pub.mu.Lock()
	pub.fail = false
	pub.mu.Unlock()

	assert.Equal(t, 1, w.poll(ctx))
	assert.Len(t, pub.published(), 1)
}

func TestWorkerBatchOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	pub := &fakePublisher{}
	w := NewWorker(store, pub, "ekyc.audit.events", slog.Default(), WithBatchSize(2))

	base := time.Now()
	first := testEntry("session_started", base.Add(-2*time.Minute))
	second := testEntry("preview_saved", base.Add(-time.Minute))
	third := testEntry("verification_completed", base)
	for _, e := range []*Entry{third, first, second} {
		require.NoError(t, store.Append(ctx, e))
	}

	// Oldest first, capped at the batch size.
	assert.Equal(t, 2, w.poll(ctx))
	msgs := pub.published()
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID.String(), string(msgs[0].Key))
	assert.Equal(t, second.ID.String(), string(msgs[1].Key))

	assert.Equal(t, 1, w.poll(ctx))
	assert.Len(t, pub.published(), 3)
}

func TestWorkerStartStopDrains(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	pub := &fakePublisher{}
	w := NewWorker(store, pub, "ekyc.audit.events", slog.Default(),
		WithPollInterval(5*time.Millisecond))

	require.NoError(t, store.Append(ctx, testEntry("verification_failed", time.Now())))

	w.Start()
	assert.Eventually(t, func() bool {
		return len(pub.published()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	w.Stop()

	pending, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}

func TestWorkerRetentionSweep(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	old := testEntry("session_started", time.Now().Add(-48*time.Hour))
	require.NoError(t, store.Append(ctx, old))
	processedAt := time.Now().Add(-36 * time.Hour)
	require.NoError(t, store.MarkProcessed(ctx, old.ID, processedAt))

	deleted, err := store.DeleteProcessedBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
