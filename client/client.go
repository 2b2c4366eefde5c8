// Package client is the producer-side SDK. It buffers tracked events in a
// bounded in-memory queue and delivers them in batches, retrying failed
// deliveries by requeueing the batch at the head of the queue.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize     = 10
	DefaultFlushInterval = 30 * time.Second
	DefaultMaxQueueSize  = 100
)

type Config struct {
	// Endpoint is the base URL of the ingestion API. Ignored when a
	// custom Sender is set.
	Endpoint string
	APIKey   string

	// UserID identifies the end user. Generated when empty.
	UserID string

	BatchSize     int           // events per delivery attempt (default 10)
	FlushInterval time.Duration // periodic flush cadence (default 30s)
	MaxQueueSize  int           // bound on buffered events (default 100)

	// Sender overrides the default HTTP delivery.
	Sender Sender

	// ErrorHandler receives delivery failures. Defaults to logging.
	ErrorHandler func(error)
}

// Analytics buffers events and flushes them in batches. Track never blocks
// on delivery and never returns an error; failed batches are requeued at
// the head so ordering is preserved, and the queue is bounded by dropping
// the oldest event on overflow.
type Analytics struct {
	batchSize    int
	maxQueueSize int

	sender  Sender
	onError func(error)

	mu    sync.Mutex // guards queue
	queue []Event

	// flushMu serializes flush attempts so a second flush cannot start
	// while one is awaiting delivery.
	flushMu sync.Mutex

	userID    string
	sessionID string

	kick      chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New(cfg Config) *Analytics {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = DefaultMaxQueueSize
	}

	sender := cfg.Sender
	if sender == nil {
		sender = NewHTTPSender(cfg.Endpoint, cfg.APIKey)
	}

	onError := cfg.ErrorHandler
	if onError == nil {
		onError = func(err error) {
			log.WithError(err).Error("failed to send analytics events")
		}
	}

	userID := cfg.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	a := &Analytics{
		batchSize:    cfg.BatchSize,
		maxQueueSize: cfg.MaxQueueSize,
		sender:       sender,
		onError:      onError,
		userID:       userID,
		sessionID:    uuid.NewString(),
		kick:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}

	a.wg.Add(1)
	go a.run(cfg.FlushInterval)

	return a
}

// Track enqueues an event. The enqueue stamps the current time and the
// client's user/session ids. When the queue exceeds MaxQueueSize the oldest
// event is dropped; when it reaches BatchSize a flush is kicked off
// asynchronously in addition to the periodic schedule.
func (a *Analytics) Track(name string, properties map[string]any) {
	event := Event{
		Name:       name,
		Timestamp:  time.Now().UTC(),
		UserID:     a.userID,
		SessionID:  a.sessionID,
		Properties: properties,
	}

	a.mu.Lock()
	a.queue = append(a.queue, event)
	if len(a.queue) > a.maxQueueSize {
		a.queue = a.queue[1:]
	}
	shouldFlush := len(a.queue) >= a.batchSize
	a.mu.Unlock()

	if shouldFlush {
		select {
		case a.kick <- struct{}{}:
		default:
		}
	}
}

// Flush attempts one delivery of up to BatchSize events from the head of
// the queue. On failure the batch is reinserted at the head, ahead of
// anything tracked meanwhile, and the error is passed to the error handler.
// A no-op when the queue is empty.
func (a *Analytics) Flush(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if len(a.queue) == 0 {
		a.mu.Unlock()
		return nil
	}
	n := a.batchSize
	if n > len(a.queue) {
		n = len(a.queue)
	}
	batch := make([]Event, n)
	copy(batch, a.queue[:n])
	a.queue = a.queue[n:]
	a.mu.Unlock()

	if err := a.sender.Send(ctx, batch); err != nil {
		a.mu.Lock()
		requeued := make([]Event, 0, len(batch)+len(a.queue))
		requeued = append(requeued, batch...)
		requeued = append(requeued, a.queue...)
		a.queue = requeued
		a.mu.Unlock()

		a.onError(err)
		return err
	}

	return nil
}

// Close stops the periodic flush schedule and performs one best-effort
// final flush. A batch that fails at shutdown stays undelivered.
func (a *Analytics) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
		a.wg.Wait()
		_ = a.Flush(context.Background())
	})
}

func (a *Analytics) run(interval time.Duration) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = a.Flush(context.Background())
		case <-a.kick:
			_ = a.Flush(context.Background())
		case <-a.done:
			return
		}
	}
}
