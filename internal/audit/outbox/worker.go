package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ekyc-gateway/internal/audit/metrics"
	"ekyc-gateway/internal/platform/kafka/producer"
)

// Publisher sends one message to the broker. Satisfied by producer.Producer;
// tests substitute a fake.
type Publisher interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Worker polls the outbox table and publishes pending entries to Kafka.
// Entries that fail to publish stay in the table and are retried on the next
// poll; consumers are expected to deduplicate on entry id.
type Worker struct {
	store        Store
	publisher    Publisher
	topic        string
	batchSize    int
	pollInterval time.Duration
	retention    time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WorkerOption configures the Worker.
type WorkerOption func(*Worker)

func WithBatchSize(size int) WorkerOption {
	return func(w *Worker) { w.batchSize = size }
}

func WithPollInterval(interval time.Duration) WorkerOption {
	return func(w *Worker) { w.pollInterval = interval }
}

// WithRetention sets how long published entries are kept before the worker
// sweeps them from the table.
func WithRetention(d time.Duration) WorkerOption {
	return func(w *Worker) { w.retention = d }
}

func WithMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) { w.metrics = m }
}

// NewWorker builds an outbox worker publishing to the given topic.
func NewWorker(store Store, publisher Publisher, topic string, logger *slog.Logger, opts ...WorkerOption) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		store:        store,
		publisher:    publisher,
		topic:        topic,
		batchSize:    100,
		pollInterval: 100 * time.Millisecond,
		retention:    24 * time.Hour,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the polling loop in a background goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop drains pending entries and waits for the loop to exit.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	sweep := time.NewTicker(w.retention / 2)
	defer sweep.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case <-ticker.C:
			w.poll(w.ctx)
		case <-sweep.C:
			w.cleanup()
		}
	}
}

// poll fetches and publishes one batch. Returns the number of entries it
// successfully published.
func (w *Worker) poll(ctx context.Context) int {
	start := time.Now()

	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("fetch outbox entries failed", "error", err)
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	if w.metrics != nil {
		w.metrics.BatchSize.Observe(float64(len(entries)))
	}

	published := 0
	for _, entry := range entries {
		if err := w.publish(ctx, entry); err != nil {
			w.logger.Error("publish outbox entry failed",
				"id", entry.ID, "event_type", entry.EventType, "error", err)
			if w.metrics != nil {
				w.metrics.PublishFailures.Inc()
			}
			// Left unprocessed; retried on the next poll.
			continue
		}

		if err := w.store.MarkProcessed(ctx, entry.ID, time.Now()); err != nil {
			// Published but not marked: the entry will be re-published
			// and deduplicated downstream by id.
			w.logger.Error("mark outbox entry processed failed", "id", entry.ID, "error", err)
			continue
		}

		published++
		if w.metrics != nil {
			w.metrics.Published.Inc()
		}
	}

	if w.metrics != nil {
		w.metrics.PollDuration.Observe(time.Since(start).Seconds())
		if pending, err := w.store.CountPending(ctx); err == nil {
			w.metrics.PendingEntries.Set(float64(pending))
		}
	}
	return published
}

func (w *Worker) publish(ctx context.Context, entry *Entry) error {
	return w.publisher.Produce(ctx, &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	})
}

// cleanup sweeps published entries past the retention window.
func (w *Worker) cleanup() {
	deleted, err := w.store.DeleteProcessedBefore(w.ctx, time.Now().Add(-w.retention))
	if err != nil {
		w.logger.Error("outbox retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		w.logger.Info("outbox retention sweep", "deleted", deleted)
	}
}

// drain publishes whatever remains before shutdown, bounded by a timeout so
// a dead broker cannot hang process exit.
func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for {
		if ctx.Err() != nil {
			return
		}
		if w.poll(ctx) == 0 {
			return
		}
	}
}
