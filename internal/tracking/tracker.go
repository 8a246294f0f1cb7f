// Package tracking runs the per-frame recognition pipeline: it maps the
// fingertip to a cursor position, feeds the gesture state machine and
// swipe detector, and hands the results to sinks.
package tracking

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/capture"
	"github.com/ayusman/fingercursor/internal/config"
	"github.com/ayusman/fingercursor/internal/cursor"
	"github.com/ayusman/fingercursor/internal/detector"
	"github.com/ayusman/fingercursor/internal/geom"
	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/mapping"
	"github.com/ayusman/fingercursor/internal/metrics"
	"github.com/ayusman/fingercursor/internal/timeutil"
)

// HandLossTimeout is how long the hand may be missing before tracking
// state is discarded.
const HandLossTimeout = 200 * time.Millisecond

// ErrNoSource is returned by Start when no camera or detector is configured.
var ErrNoSource = errors.New("tracking needs a camera and a detector")

// Status is the coarse tracking state shown to the user.
type Status int32

const (
	StatusIdle Status = iota
	StatusSearching
	StatusTracking
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSearching:
		return "searching"
	case StatusTracking:
		return "tracking"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Frame is the outcome of processing one sample.
type Frame struct {
	At     time.Time
	Status Status

	// Cursor is the new pointer position in screen coordinates. It is
	// meaningful only when HasCursor is set.
	Cursor    r2.Vec
	HasCursor bool

	// Events are in emission order.
	Events   []gesture.Event
	Debug    gesture.DebugState
	Readings gesture.Readings

	// Withheld is set when the sample was too faint to act on.
	Withheld bool
	// Lost is set on the frame that discarded state after the hand left.
	Lost bool
}

// ConfigSource supplies the configuration for each frame.
type ConfigSource interface {
	Config() config.Config
}

// MotionSensor reports scene motion between camera frames.
type MotionSensor interface {
	Detect(frame *gocv.Mat) (bool, float64)
	Reset()
}

// Config wires a Tracker to its collaborators. Only Screens is required
// for Process; Start also needs Camera and Detector.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Motion   MotionSensor
	Screens  cursor.Screens
	Clock    timeutil.Clock
	Source   ConfigSource
	Metrics  *metrics.Metrics
	Sinks    []Sink

	// QueueSize bounds the frames waiting for sinks.
	QueueSize int
}

// Tracker owns all per-frame state. Process and HandLost must be called
// from one goroutine at a time; Submit and SubmitLoss enforce that with a
// single-slot admission gate and drop work that arrives while a frame is
// in flight.
type Tracker struct {
	camera   capture.Camera
	detector detector.Detector
	motion   MotionSensor
	screens  cursor.Screens
	clock    timeutil.Clock
	source   ConfigSource
	metrics  *metrics.Metrics
	throttle *capture.Throttle
	dispatch *dispatcher

	// worker state
	mapper   mapping.Mapper
	hint     mapping.HintSmoother
	dynamics cursor.Dynamics
	machine  *gesture.StateMachine
	swipe    *gesture.SwipeDetector
	lastSeen time.Time
	seen     bool

	gate         chan struct{}
	inflight     sync.WaitGroup
	resetPending atomic.Bool
	status       atomic.Int32

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	done    chan struct{}
}

// New returns an enabled, idle Tracker. Call Close to release it.
func New(cfg Config) *Tracker {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Source == nil {
		cfg.Source = config.NewHolder(config.Default())
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Screens == nil {
		cfg.Screens = cursor.StaticScreens{}
	}

	return &Tracker{
		camera:   cfg.Camera,
		detector: cfg.Detector,
		motion:   cfg.Motion,
		screens:  cfg.Screens,
		clock:    cfg.Clock,
		source:   cfg.Source,
		metrics:  cfg.Metrics,
		throttle: capture.NewThrottle(),
		dispatch: newDispatcher(cfg.Sinks, cfg.QueueSize, cfg.Metrics),
		machine:  gesture.NewStateMachine(cfg.Clock),
		swipe:    gesture.NewSwipeDetector(),
		gate:     make(chan struct{}, 1),
		enabled:  true,
	}
}

// Process runs one sample through the pipeline and queues the resulting
// frame for the sinks.
func (t *Tracker) Process(s detector.Sample) Frame {
	started := time.Now()
	defer func() { t.metrics.UpdateProcessLatency(time.Since(started)) }()

	t.applyPendingReset()
	t.metrics.FramesProcessed.Add(1)
	now := t.clock.Now()

	if s.Visibility <= gesture.VisibilityFloor {
		t.machine.Update(s, gesture.Parameters{})
		t.swipe.Reset()
		t.metrics.FramesWithheld.Add(1)
		return t.emit(Frame{At: now, Status: t.Status(), Withheld: true})
	}

	bounds, ok := cursor.VirtualBounds(t.screens.Displays()...)
	if !ok {
		t.metrics.FramesWithheld.Add(1)
		return t.emit(Frame{At: now, Status: t.Status(), Withheld: true})
	}

	t.lastSeen, t.seen = now, true
	cfg := t.source.Config()

	hint, hasHint := t.hint.Update(mapping.OrientationHint(s))
	ctx := mapping.Context{
		ROI:        mapping.UnitROI,
		Screen:     r2.Sub(bounds.Max, bounds.Min),
		Smoothing:  cfg.FilterParams(),
		Hint:       hint,
		HasHint:    hasHint,
		HintWeight: mapping.DefaultHintWeight,
	}
	target := geom.ClampToBox(r2.Add(bounds.Min, t.mapper.Map(s.IndexTip, ctx, now)), bounds)
	pos := t.dynamics.Step(target, now, cfg.CursorParams(), bounds)

	events := t.machine.Update(s, cfg.GestureParameters())
	readings := t.machine.Readings()
	// swipes are measured with y growing upward
	if ev, ok := t.swipe.Update(readings.Fist, r2.Vec{X: pos.X, Y: -pos.Y}, now); ok {
		events = append(events, ev)
	}

	for _, ev := range events {
		t.metrics.ObserveEvent(ev.String())
	}
	t.setStatus(StatusTracking)

	return t.emit(Frame{
		At:        now,
		Status:    StatusTracking,
		Cursor:    pos,
		HasCursor: true,
		Events:    events,
		Debug:     t.machine.Debug(),
		Readings:  readings,
	})
}

// HandLost is called for frames without a usable hand. Once the hand has
// been gone for HandLossTimeout it discards all tracking state and
// reports true.
func (t *Tracker) HandLost() bool {
	t.applyPendingReset()
	now := t.clock.Now()
	if t.seen && now.Sub(t.lastSeen) < HandLossTimeout {
		return false
	}

	wasTracking := t.Status() == StatusTracking
	t.resetState()
	if wasTracking {
		t.setStatus(StatusSearching)
		t.metrics.HandLosses.Add(1)
		t.emit(Frame{At: now, Status: StatusSearching, Lost: true})
	}
	return true
}

// Submit offers s to the worker without blocking. It returns false, and
// the sample is dropped, when a frame is still in flight.
func (t *Tracker) Submit(s detector.Sample) bool {
	t.metrics.FramesSubmitted.Add(1)
	return t.admit(func() { t.Process(s) })
}

// SubmitLoss offers a hand-absent frame to the worker without blocking.
func (t *Tracker) SubmitLoss() bool {
	return t.admit(func() { t.HandLost() })
}

func (t *Tracker) admit(work func()) bool {
	select {
	case t.gate <- struct{}{}:
	default:
		t.metrics.FramesDropped.Add(1)
		return false
	}

	t.inflight.Add(1)
	go func() {
		defer func() {
			<-t.gate
			t.inflight.Done()
		}()
		work()
	}()
	return true
}

// Wait blocks until the frame in flight, if any, has been processed.
func (t *Tracker) Wait() {
	t.inflight.Wait()
}

// Reset discards all per-frame state before the next frame is processed.
// It is idempotent.
func (t *Tracker) Reset() {
	t.resetPending.Store(true)
}

func (t *Tracker) applyPendingReset() {
	if t.resetPending.CompareAndSwap(true, false) {
		t.resetState()
	}
}

func (t *Tracker) resetState() {
	t.mapper.Reset()
	t.hint.Reset()
	t.dynamics.Reset()
	t.machine.Reset()
	t.swipe.Reset()
	t.lastSeen, t.seen = time.Time{}, false
}

func (t *Tracker) emit(f Frame) Frame {
	t.dispatch.push(f)
	return f
}

// Status returns the current tracking status.
func (t *Tracker) Status() Status {
	return Status(t.status.Load())
}

func (t *Tracker) setStatus(s Status) {
	if old := Status(t.status.Swap(int32(s))); old != s {
		Logf("Tracking status: %s -> %s", old, s)
	}
}

// SetEnabled turns recognition on or off. Disabling discards all
// tracking state.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	running := t.stopCh != nil
	t.mu.Unlock()

	if !enabled {
		t.Reset()
		t.setStatus(StatusIdle)
		return
	}
	if running {
		t.setStatus(StatusSearching)
	}
}

// Enabled reports whether recognition is enabled.
func (t *Tracker) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Metrics returns the tracker's counters.
func (t *Tracker) Metrics() *metrics.Metrics {
	return t.metrics
}

// Close stops the capture loop, waits for queued frames to reach the
// sinks and closes the detector.
func (t *Tracker) Close() error {
	t.Stop()
	t.inflight.Wait()
	t.dispatch.close()

	if t.detector != nil {
		if err := t.detector.Close(); err != nil {
			return fmt.Errorf("close detector: %w", err)
		}
	}
	return nil
}
