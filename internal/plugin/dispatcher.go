package plugin

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/store"
	"github.com/ayusman/fingercursor/internal/tracking"
)

// DefaultConcurrency caps plugin runs in flight.
const DefaultConcurrency = 4

// BindingLookup finds the enabled binding for an event. It returns nil,
// nil when the event is unbound.
type BindingLookup interface {
	GetByEvent(ev gesture.Event) (*store.Binding, error)
}

// Runner executes one plugin request.
type Runner interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// Dispatcher runs the plugin bound to each gesture event of a frame.
// Runs happen off the frame path; when all slots are busy the event is
// dropped rather than queued.
type Dispatcher struct {
	bindings BindingLookup
	plugins  *Manager
	runner   Runner

	ctx    context.Context
	cancel context.CancelFunc
	slots  chan struct{}
	wg     sync.WaitGroup

	runs    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// NewDispatcher returns a Dispatcher. concurrency <= 0 uses DefaultConcurrency.
func NewDispatcher(bindings BindingLookup, plugins *Manager, runner Runner, concurrency int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		bindings: bindings,
		plugins:  plugins,
		runner:   runner,
		ctx:      ctx,
		cancel:   cancel,
		slots:    make(chan struct{}, concurrency),
	}
}

// HandleFrame implements tracking.Sink. Lookup errors are returned; plugin
// failures are logged from the worker.
func (d *Dispatcher) HandleFrame(f tracking.Frame) error {
	for _, ev := range f.Events {
		b, err := d.bindings.GetByEvent(ev)
		if err != nil {
			return err
		}
		if b == nil || !b.Enabled {
			continue
		}

		p, err := d.plugins.Get(b.PluginName)
		if err != nil {
			log.Printf("plugin: %s bound to missing plugin %q", ev, b.PluginName)
			d.failed.Add(1)
			continue
		}

		req := &Request{
			Action: b.ActionName,
			Event:  ev.String(),
			X:      f.Cursor.X,
			Y:      f.Cursor.Y,
			Config: b.Config,
		}

		select {
		case d.slots <- struct{}{}:
		default:
			d.dropped.Add(1)
			log.Printf("plugin: busy, dropping %s for %s", ev, p.Manifest.Name)
			continue
		}

		d.wg.Add(1)
		go d.run(p, req)
	}
	return nil
}

func (d *Dispatcher) run(p *Plugin, req *Request) {
	defer d.wg.Done()
	defer func() { <-d.slots }()

	d.runs.Add(1)
	resp, err := d.runner.Execute(d.ctx, p, req)
	switch {
	case err != nil:
		d.failed.Add(1)
		log.Printf("plugin: %s/%s for %s: %v", p.Manifest.Name, req.Action, req.Event, err)
	case !resp.Success:
		d.failed.Add(1)
		log.Printf("plugin: %s/%s for %s reported: %s", p.Manifest.Name, req.Action, req.Event, resp.Error)
	}
}

// Stats reports runs started, runs failed and events dropped while busy.
func (d *Dispatcher) Stats() (runs, failed, dropped uint64) {
	return d.runs.Load(), d.failed.Load(), d.dropped.Load()
}

// Wait blocks until every started run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close cancels running plugins and waits for them.
func (d *Dispatcher) Close() error {
	d.cancel()
	d.wg.Wait()
	return nil
}
