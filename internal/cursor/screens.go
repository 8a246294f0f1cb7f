package cursor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Screens reports the rectangles of the attached displays in screen
// coordinates, origin top-left.
type Screens interface {
	Displays() []r2.Box
}

// StaticScreens is a fixed display layout.
type StaticScreens []r2.Box

// Displays implements Screens.
func (s StaticScreens) Displays() []r2.Box {
	return s
}

// VirtualBounds returns the smallest rectangle covering every display.
// Displays without area are skipped; it reports false when none remain.
func VirtualBounds(displays ...r2.Box) (r2.Box, bool) {
	var (
		union r2.Box
		found bool
	)
	for _, d := range displays {
		if d.Max.X <= d.Min.X || d.Max.Y <= d.Min.Y {
			continue
		}
		if !found {
			union, found = d, true
			continue
		}
		union.Min.X = math.Min(union.Min.X, d.Min.X)
		union.Min.Y = math.Min(union.Min.Y, d.Min.Y)
		union.Max.X = math.Max(union.Max.X, d.Max.X)
		union.Max.Y = math.Max(union.Max.Y, d.Max.Y)
	}
	return union, found
}
