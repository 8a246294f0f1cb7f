// Package filter implements the speed-adaptive low-pass filter used to
// smooth fingertip positions before they become cursor targets.
package filter

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// minInterval bounds dt from below so a duplicated timestamp cannot
// divide by zero.
const minInterval = time.Millisecond

// Params configures one filtering call. They are supplied on every call;
// the filter itself only remembers its signal state.
type Params struct {
	// MinCutoff is the cutoff frequency in Hz at zero speed.
	MinCutoff float64 `json:"min_cutoff"`
	// Beta scales how much the cutoff rises with speed.
	Beta float64 `json:"beta"`
	// DerivativeCutoff is the cutoff frequency in Hz used to smooth the speed estimate.
	DerivativeCutoff float64 `json:"derivative_cutoff"`
}

// DefaultParams returns the smoothing defaults.
func DefaultParams() Params {
	return Params{
		MinCutoff:        1.2,
		Beta:             0.007,
		DerivativeCutoff: 1.0,
	}
}

// OneEuro is a One-Euro filter over a 2D point. The zero value is ready to
// use and passes its first sample through unchanged.
type OneEuro struct {
	prev   r2.Vec
	prevDx r2.Vec
	prevAt time.Time
	primed bool
}

// Filter smooths p observed at time at.
//
// The cutoff is MinCutoff + Beta*|dx| where dx is the low-passed
// derivative, so slow motion is heavily smoothed and fast motion follows
// the input closely.
func (f *OneEuro) Filter(p r2.Vec, at time.Time, params Params) r2.Vec {
	if !f.primed {
		f.prev = p
		f.prevDx = r2.Vec{}
		f.prevAt = at
		f.primed = true
		return p
	}

	dt := at.Sub(f.prevAt)
	if dt < minInterval {
		dt = minInterval
	}
	seconds := dt.Seconds()

	dx := r2.Scale(1/seconds, r2.Sub(p, f.prev))
	edx := lowpass(f.prevDx, dx, alpha(params.DerivativeCutoff, seconds))
	cutoff := params.MinCutoff + params.Beta*r2.Norm(edx)
	filtered := lowpass(f.prev, p, alpha(cutoff, seconds))

	f.prev = filtered
	f.prevDx = edx
	f.prevAt = at

	return filtered
}

// Reset forgets all state; the next sample is passed through unchanged.
func (f *OneEuro) Reset() {
	*f = OneEuro{}
}

// Primed reports whether the filter has seen a sample since the last reset.
func (f *OneEuro) Primed() bool {
	return f.primed
}

func alpha(cutoff, dt float64) float64 {
	tau := 1.0 / (2.0 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau/dt)
}

func lowpass(previous, current r2.Vec, a float64) r2.Vec {
	return r2.Add(r2.Scale(a, current), r2.Scale(1-a, previous))
}
