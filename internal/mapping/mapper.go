// Package mapping converts a normalized fingertip position into a smoothed
// screen-space cursor target.
package mapping

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/filter"
	"github.com/ayusman/fingercursor/internal/geom"
)

// DefaultHintWeight is how strongly the orientation hint pulls the
// vertical coordinate.
const DefaultHintWeight = 0.18

// UnitROI is the whole camera frame.
var UnitROI = r2.Box{Max: r2.Vec{X: 1, Y: 1}}

// Context carries the per-call mapping configuration.
type Context struct {
	// ROI is the region of the camera frame that spans the screen.
	ROI r2.Box
	// Screen is the target width and height.
	Screen r2.Vec
	// Smoothing parameterizes the fingertip filter for this call.
	Smoothing filter.Params

	// Hint is an optional vertical position in [0,1] derived from the
	// index finger's pointing direction. It is used only when HasHint is set.
	Hint       float64
	HasHint    bool
	HintWeight float64
}

// Mapper maps fingertip positions to screen points through a One-Euro
// filter. The zero value is ready to use.
type Mapper struct {
	filter filter.OneEuro
}

// Map converts the normalized point p, observed at time at, to a smoothed
// screen point.
func (m *Mapper) Map(p r2.Vec, ctx Context, at time.Time) r2.Vec {
	normalized := normalize(p, ctx.ROI)
	// the camera feed is mirrored
	mirrored := r2.Vec{X: 1 - normalized.X, Y: normalized.Y}

	vertical := 1 - mirrored.Y
	if ctx.HasHint {
		w := geom.Clamp01(ctx.HintWeight)
		vertical = vertical*(1-w) + geom.Clamp01(ctx.Hint)*w
	}

	screen := r2.Vec{
		X: mirrored.X * ctx.Screen.X,
		Y: vertical * ctx.Screen.Y,
	}
	return m.filter.Filter(screen, at, ctx.Smoothing)
}

// Reset clears the filter state.
func (m *Mapper) Reset() {
	m.filter.Reset()
}

func normalize(p r2.Vec, roi r2.Box) r2.Vec {
	size := r2.Sub(roi.Max, roi.Min)
	if size.X <= 0 || size.Y <= 0 {
		return r2.Vec{}
	}
	d := r2.Sub(p, roi.Min)
	return r2.Vec{X: d.X / size.X, Y: d.Y / size.Y}
}
