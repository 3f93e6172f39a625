package transport

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// Dispatcher copies readings from one source to multiple subscribers.
// When a subscriber's buffer is full the reading is dropped for that
// subscriber so the simulator never blocks on a slow consumer.
type Dispatcher struct {
	source       <-chan models.Reading
	subscribers  []chan models.Reading
	bufferSize   int
	mu           sync.Mutex
	droppedTotal int64 // atomic
	logger       *zap.Logger
	onDrop       func(n int)
}

func NewDispatcher(source <-chan models.Reading, bufferSize int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		source:      source,
		subscribers: make([]chan models.Reading, 0),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// OnDrop registers a callback receiving the number of subscribers that
// missed each dropped reading
func (d *Dispatcher) OnDrop(fn func(n int)) {
	d.onDrop = fn
}

// Subscribe returns a channel that receives copies of all source readings.
// Subscribers should be added before calling Run to receive every reading.
func (d *Dispatcher) Subscribe() <-chan models.Reading {
	ch := make(chan models.Reading, d.bufferSize)
	d.mu.Lock()
	d.subscribers = append(d.subscribers, ch)
	d.mu.Unlock()
	return ch
}

// SubscriberCount returns the number of subscribers
func (d *Dispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}

// DroppedCount returns the total number of dropped deliveries
func (d *Dispatcher) DroppedCount() int64 {
	return atomic.LoadInt64(&d.droppedTotal)
}

// Run blocks until ctx is cancelled or source closes
func (d *Dispatcher) Run(ctx context.Context) {
	defer d.closeSubscribers()

	for {
		select {
		case <-ctx.Done():
			return
		case reading, ok := <-d.source:
			if !ok {
				return
			}
			d.dispatch(ctx, reading)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, reading models.Reading) {
	d.mu.Lock()
	subs := d.subscribers
	d.mu.Unlock()

	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- reading:
		case <-ctx.Done():
			return
		default:
			dropped++
			atomic.AddInt64(&d.droppedTotal, 1)
		}
	}

	if dropped > 0 {
		d.logger.Warn("reading dropped, subscriber buffer full",
			zap.Int64("sequence", reading.Sequence),
			zap.Int("subscribers", dropped),
		)
		if d.onDrop != nil {
			d.onDrop(dropped)
		}
	}
}

func (d *Dispatcher) closeSubscribers() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, sub := range d.subscribers {
		close(sub)
	}
}
