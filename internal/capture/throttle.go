package capture

import "time"

// Frame rates used by the tracker.
const (
	// IdleFPS is the polling rate while nothing moves.
	IdleFPS = 5
	// ActiveFPS is the polling rate while a hand or motion is in view.
	ActiveFPS = 30
	// IdleTimeout is how long the scene must stay still before dropping
	// back to IdleFPS.
	IdleTimeout = 2 * time.Second
)

// Throttle switches between the idle and active polling rates.
type Throttle struct {
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewThrottle returns an idle Throttle with the default rates.
func NewThrottle() *Throttle {
	return &Throttle{
		IdleFPS:     IdleFPS,
		ActiveFPS:   ActiveFPS,
		IdleTimeout: IdleTimeout,
	}
}

// Observe records whether there was activity at now. It returns the frame
// rate to poll at and whether that rate just changed.
func (t *Throttle) Observe(activity bool, now time.Time) (int, bool) {
	switch {
	case activity:
		t.lastMotion = now
		if !t.active {
			t.active = true
			return t.ActiveFPS, true
		}
	case t.active && now.Sub(t.lastMotion) > t.IdleTimeout:
		t.active = false
		return t.IdleFPS, true
	}
	return t.FPS(), false
}

// Active reports whether the throttle is at the active rate.
func (t *Throttle) Active() bool {
	return t.active
}

// FPS returns the current polling rate.
func (t *Throttle) FPS() int {
	if t.active {
		return t.ActiveFPS
	}
	return t.IdleFPS
}

// Interval returns the time between polls at the current rate.
func (t *Throttle) Interval() time.Duration {
	fps := t.FPS()
	if fps <= 0 {
		fps = IdleFPS
	}
	return time.Second / time.Duration(fps)
}

// Reset returns to the idle rate.
func (t *Throttle) Reset() {
	t.active = false
	t.lastMotion = time.Time{}
}
