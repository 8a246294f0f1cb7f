// Package cursor applies pointer acceleration to mapped fingertip targets
// and keeps the result on screen.
package cursor

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/geom"
)

const minInterval = time.Millisecond

// Params configures pointer acceleration.
type Params struct {
	// BaseGain scales every movement.
	BaseGain float64 `json:"base_gain"`
	// AccelerationK is the extra gain reached at VelocityReference.
	AccelerationK float64 `json:"acceleration_k"`
	// VelocityReference is the speed, in px/s, at which acceleration saturates.
	VelocityReference float64 `json:"velocity_reference"`
	// MaxStep caps the distance, in px, the target may move in one frame.
	MaxStep float64 `json:"max_step"`
}

// DefaultParams returns the acceleration defaults.
func DefaultParams() Params {
	return Params{
		BaseGain:          1.0,
		AccelerationK:     0.35,
		VelocityReference: 950,
		MaxStep:           140,
	}
}

// Gain returns the multiplier applied at velocity v. It grows with v and
// saturates at BaseGain*(1+AccelerationK).
func (p Params) Gain(v float64) float64 {
	ratio := 1.0
	if p.VelocityReference > 0 {
		ratio = math.Min(v/p.VelocityReference, 1)
	}
	return p.BaseGain * (1 + p.AccelerationK*ratio)
}

// Dynamics turns a stream of targets into cursor positions. The zero
// value is ready to use.
type Dynamics struct {
	prevTarget r2.Vec
	prevCursor r2.Vec
	prevAt     time.Time
	primed     bool
}

// Step advances the cursor toward target observed at time at and returns
// the new cursor position clamped to bounds. The first call returns
// target unchanged.
func (d *Dynamics) Step(target r2.Vec, at time.Time, p Params, bounds r2.Box) r2.Vec {
	if !d.primed {
		d.prevTarget = target
		d.prevCursor = target
		d.prevAt = at
		d.primed = true
		return target
	}

	dt := at.Sub(d.prevAt)
	if dt < minInterval {
		dt = minInterval
	}

	delta := r2.Sub(target, d.prevTarget)
	if dist := r2.Norm(delta); dist > p.MaxStep && dist > 0 {
		delta = r2.Scale(p.MaxStep/dist, delta)
	}
	velocity := r2.Norm(delta) / dt.Seconds()

	next := r2.Add(d.prevCursor, r2.Scale(p.Gain(velocity), delta))
	next = geom.ClampToBox(next, bounds)

	d.prevTarget = target
	d.prevCursor = next
	d.prevAt = at
	return next
}

// Reset forgets the previous target and cursor.
func (d *Dynamics) Reset() {
	*d = Dynamics{}
}

// Primed reports whether Step has seen a target since the last Reset.
func (d *Dynamics) Primed() bool {
	return d.primed
}
