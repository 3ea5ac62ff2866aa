package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campuscarry/campuscarry-api/metrics"
	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event queue closed")
)

const deliveryTimeout = 5 * time.Second

// Async decouples a slow sink (network broker, object store) from the request path.
// Events are queued without blocking and dropped when the queue is full.
type Async struct {
	name   string
	next   Notifier
	queue  chan Event
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsync starts a single delivery worker in front of next
func NewAsync(name string, next Notifier, size int, logger *zap.Logger) *Async {
	a := &Async{
		name:   name,
		next:   next,
		queue:  make(chan Event, size),
		logger: logger,
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) Publish(_ context.Context, event Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until the queued ones are delivered
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Async) run() {
	defer a.wg.Done()
	for event := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		err := a.next.Publish(ctx, event)
		cancel()

		if err != nil {
			metrics.EventsPublishedTotal.WithLabelValues(a.name, "failed").Inc()
			a.logger.Error("failed to deliver event",
				zap.String("sink", a.name),
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
			continue
		}
		metrics.EventsPublishedTotal.WithLabelValues(a.name, "delivered").Inc()
	}
}
