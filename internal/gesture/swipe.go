package gesture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultSwipeDistance is the screen travel, in pixels, that makes a swipe.
	DefaultSwipeDistance = 180.0
	// DefaultSwipeWindow is the longest a swipe may take.
	DefaultSwipeWindow = 450 * time.Millisecond
)

// SwipeDetector recognizes a closed fist travelling across the screen.
type SwipeDetector struct {
	Distance float64
	Window   time.Duration

	origin   r2.Vec
	originAt time.Time
	armed    bool
}

// NewSwipeDetector returns a detector with the default distance and window.
func NewSwipeDetector() *SwipeDetector {
	return &SwipeDetector{
		Distance: DefaultSwipeDistance,
		Window:   DefaultSwipeWindow,
	}
}

// Update feeds one frame: whether the fist is closed and the mapped
// screen point. It returns a Swipe event when the fist has travelled at
// least Distance within Window of closing.
//
// A run that outlives Window without travelling far enough restarts from
// the current point, so a slow drift followed by a flick still swipes.
func (d *SwipeDetector) Update(fist bool, p r2.Vec, at time.Time) (Event, bool) {
	if !fist {
		d.Reset()
		return Event{}, false
	}
	if !d.armed {
		d.arm(p, at)
		return Event{}, false
	}

	delta := r2.Sub(p, d.origin)
	if at.Sub(d.originAt) > d.Window {
		d.arm(p, at)
		return Event{}, false
	}
	if r2.Norm(delta) < d.Distance {
		return Event{}, false
	}

	d.Reset()
	return SwipeEvent(dominant(delta)), true
}

// Reset forgets any swipe in progress.
func (d *SwipeDetector) Reset() {
	d.armed = false
	d.origin = r2.Vec{}
	d.originAt = time.Time{}
}

// Armed reports whether a fist run is in progress.
func (d *SwipeDetector) Armed() bool {
	return d.armed
}

func (d *SwipeDetector) arm(p r2.Vec, at time.Time) {
	d.armed = true
	d.origin = p
	d.originAt = at
}

// dominant picks the axis of larger travel. Ties go vertical, and y grows
// upward.
func dominant(delta r2.Vec) Direction {
	if math.Abs(delta.X) > math.Abs(delta.Y) {
		if delta.X > 0 {
			return Right
		}
		return Left
	}
	if delta.Y > 0 {
		return Up
	}
	return Down
}
