package mapping

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/detector"
	"github.com/ayusman/fingercursor/internal/geom"
)

// hintSmoothing is the EMA factor applied to successive hints.
const hintSmoothing = 0.25

// OrientationHint estimates a vertical screen position from the direction
// the index finger points. A finger pointing straight up gives 0, straight
// down gives 1. It reports false when the finger has no usable direction.
func OrientationHint(s detector.Sample) (float64, bool) {
	proximal, ok := geom.Direction(s.IndexMCP, s.IndexPIP)
	if !ok {
		return 0, false
	}
	distal, ok := geom.Direction(s.IndexPIP, s.IndexTip)
	if !ok {
		return 0, false
	}
	pointing, ok := geom.Direction(r2.Vec{}, r2.Add(proximal, distal))
	if !ok {
		return 0, false
	}
	return 0.5 * (1 - geom.Clamp(pointing.Y, -1, 1)), true
}

// HintSmoother applies an exponential moving average to orientation hints.
type HintSmoother struct {
	value float64
	ok    bool
}

// Update folds in the latest hint and returns the smoothed value. An
// absent hint clears the average.
func (h *HintSmoother) Update(hint float64, ok bool) (float64, bool) {
	switch {
	case !ok:
		h.Reset()
	case !h.ok:
		h.value, h.ok = hint, true
	default:
		h.value += (hint - h.value) * hintSmoothing
	}
	return h.value, h.ok
}

// Value returns the current smoothed hint.
func (h *HintSmoother) Value() (float64, bool) {
	return h.value, h.ok
}

// Reset discards the average.
func (h *HintSmoother) Reset() {
	*h = HintSmoother{}
}
