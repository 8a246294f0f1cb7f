package gesture

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/fingercursor/internal/detector"
	"github.com/ayusman/fingercursor/internal/geom"
)

// Readings are the per-frame boolean poses derived from one sample.
type Readings struct {
	TwoFinger   bool `json:"two_finger"`
	Palm        bool `json:"palm"`
	PinkyRaised bool `json:"pinky_raised"`
	Fist        bool `json:"fist"`
}

// Classify derives the four pose readings from s. It is a pure function.
func Classify(s detector.Sample, p Parameters) Readings {
	extension := func(v r2.Vec) float64 { return geom.Distance(v, s.PalmCenter) }

	index := extension(s.IndexTip)
	middle := extension(s.MiddleTip)
	ring := extension(s.RingTip)
	little := extension(s.LittleTip)

	spread := stat.Mean([]float64{index, middle, ring, little}, nil)
	others := stat.Mean([]float64{ring, index, middle}, nil)

	return Readings{
		TwoFinger:   geom.Distance(s.IndexTip, s.MiddleTip) < p.TwoFingerThreshold,
		Palm:        spread > p.PalmAreaMinimum,
		PinkyRaised: pinkyRaised(s, p, little, ring, others),
		Fist:        spread < p.FistMaximumExtension,
	}
}

func pinkyRaised(s detector.Sample, p Parameters, little, ring, others float64) bool {
	if little <= p.PinkyLiftMinimum {
		return false
	}
	if Straightness(s.LittleMCP, s.LittlePIP, s.LittleTip) <= p.PinkyStraightness {
		return false
	}
	return little > others*p.PinkyLiftRatio ||
		little-ring > p.PinkyLiftDelta ||
		geom.Distance(s.LittleTip, s.RingTip) > p.PinkySeparation
}

// Straightness is the cosine between the base→joint and joint→tip segments
// of a finger. It is 0 when either segment is degenerate.
func Straightness(base, joint, tip r2.Vec) float64 {
	proximal, ok := geom.Direction(base, joint)
	if !ok {
		return 0
	}
	distal, ok := geom.Direction(joint, tip)
	if !ok {
		return 0
	}
	return r2.Dot(proximal, distal)
}
