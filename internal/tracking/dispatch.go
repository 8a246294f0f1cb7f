package tracking

import (
	"sync"

	"github.com/ayusman/fingercursor/internal/metrics"
)

// DefaultQueueSize is how many processed frames may wait for delivery.
const DefaultQueueSize = 64

// Sink consumes processed frames. Sinks run on the dispatcher goroutine,
// one frame at a time, in processing order.
type Sink interface {
	HandleFrame(f Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f Frame) error

// HandleFrame implements Sink.
func (fn SinkFunc) HandleFrame(f Frame) error {
	return fn(f)
}

// dispatcher delivers frames to sinks off the processing path. A full
// queue drops the frame; nothing is retried.
type dispatcher struct {
	sinks   []Sink
	metrics *metrics.Metrics
	queue   chan Frame
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newDispatcher(sinks []Sink, size int, m *metrics.Metrics) *dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	d := &dispatcher{
		sinks:   sinks,
		metrics: m,
		queue:   make(chan Frame, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// push enqueues f without blocking and reports whether it was accepted.
func (d *dispatcher) push(f Frame) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.queue <- f:
		return true
	default:
		d.metrics.DeliveriesDropped.Add(1)
		return false
	}
}

func (d *dispatcher) run() {
	defer close(d.done)
	for f := range d.queue {
		for _, s := range d.sinks {
			if err := s.HandleFrame(f); err != nil {
				d.metrics.SinkErrors.Add(1)
				Logf("Error delivering frame: %v", err)
			}
		}
	}
}

// close stops accepting frames and waits for the queue to drain.
func (d *dispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
