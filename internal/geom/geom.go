// Package geom holds the small amount of planar geometry shared by the
// filtering, mapping, gesture and cursor packages.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the shortest segment length treated as having a direction.
const Epsilon = 1e-5

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Direction returns the unit vector pointing from start to end.
// It reports false when the two points are closer than Epsilon.
func Direction(start, end r2.Vec) (r2.Vec, bool) {
	d := r2.Sub(end, start)
	length := r2.Norm(d)
	if length <= Epsilon {
		return r2.Vec{}, false
	}
	return r2.Scale(1/length, d), true
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampToBox limits each coordinate of p to the extent of b.
func ClampToBox(p r2.Vec, b r2.Box) r2.Vec {
	return r2.Vec{
		X: Clamp(p.X, b.Min.X, b.Max.X),
		Y: Clamp(p.Y, b.Min.Y, b.Max.Y),
	}
}
