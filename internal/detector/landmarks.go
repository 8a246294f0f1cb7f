// Package detector provides hand detection interfaces and the landmark
// types consumed by the gesture and cursor pipeline.
package detector

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// MinPointConfidence is the per-point confidence a hand must exceed on
// every tracked landmark to be turned into a Sample.
const MinPointConfidence = 0.2

// Point3D is one detected landmark in normalized image coordinates
// (origin top-left, y growing downward).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	// Visibility is the detector's per-point confidence. Zero means the
	// detector did not report one and the hand score is used instead.
	Visibility float64 `json:"visibility,omitempty"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Sample is one frame's worth of the landmarks the pipeline tracks.
// Coordinates are normalized to [0,1] with the origin at the bottom-left.
type Sample struct {
	ThumbTip   r2.Vec
	IndexTip   r2.Vec
	IndexPIP   r2.Vec
	IndexMCP   r2.Vec
	MiddleTip  r2.Vec
	RingTip    r2.Vec
	LittleTip  r2.Vec
	LittlePIP  r2.Vec
	LittleMCP  r2.Vec
	Wrist      r2.Vec
	PalmCenter r2.Vec
	// Visibility is the mean confidence of the tracked points.
	Visibility float64
}

// trackedPoints lists the landmarks a Sample is built from.
var trackedPoints = [...]int{
	ThumbTip, IndexTip, IndexPIP, IndexMCP,
	MiddleTip, RingTip,
	PinkyTip, PinkyPIP, PinkyMCP,
	Wrist,
}

// palmPoints are averaged to approximate the palm center.
var palmPoints = [...]int{Wrist, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

// Sample converts the hand into a pipeline Sample. It reports false when
// any tracked point is at or below MinPointConfidence.
func (h *HandLandmarks) Sample() (Sample, bool) {
	if h == nil {
		return Sample{}, false
	}

	var total float64
	for _, idx := range trackedPoints {
		c := h.confidence(idx)
		if c <= MinPointConfidence {
			return Sample{}, false
		}
		total += c
	}

	var palm r2.Vec
	for _, idx := range palmPoints {
		palm = r2.Add(palm, h.vec(idx))
	}
	palm = r2.Scale(1/float64(len(palmPoints)), palm)

	return Sample{
		ThumbTip:   h.vec(ThumbTip),
		IndexTip:   h.vec(IndexTip),
		IndexPIP:   h.vec(IndexPIP),
		IndexMCP:   h.vec(IndexMCP),
		MiddleTip:  h.vec(MiddleTip),
		RingTip:    h.vec(RingTip),
		LittleTip:  h.vec(PinkyTip),
		LittlePIP:  h.vec(PinkyPIP),
		LittleMCP:  h.vec(PinkyMCP),
		Wrist:      h.vec(Wrist),
		PalmCenter: palm,
		Visibility: total / float64(len(trackedPoints)),
	}, true
}

// vec returns landmark idx as a bottom-left-origin 2D point.
func (h *HandLandmarks) vec(idx int) r2.Vec {
	p := h.Points[idx]
	return r2.Vec{X: p.X, Y: 1 - p.Y}
}

func (h *HandLandmarks) confidence(idx int) float64 {
	if v := h.Points[idx].Visibility; v > 0 {
		return v
	}
	return h.Score
}
