package gesture

import "time"

// VisibilityFloor is the sample visibility at or below which a frame is
// treated as no hand at all.
const VisibilityFloor = 0.1

// Parameters configures classification and debouncing for one Update call.
// Distances are in normalized landmark units.
type Parameters struct {
	// TwoFingerThreshold is the maximum index-to-middle fingertip distance
	// for the two-finger pose.
	TwoFingerThreshold float64
	// PalmAreaMinimum is the mean fingertip extension above which the palm
	// counts as open.
	PalmAreaMinimum float64

	// Debounce and Hold together are how long a reading must stay true
	// before its event fires.
	Debounce time.Duration
	Hold     time.Duration
	// Refractory is the minimum spacing between two clicks of the same kind.
	Refractory time.Duration

	// PinkyLiftRatio is how far the little finger must out-reach the mean
	// of index, middle and ring.
	PinkyLiftRatio float64
	// PinkyLiftDelta is how far the little finger must out-reach the ring finger.
	PinkyLiftDelta float64
	// PinkyLiftMinimum is the minimum little finger extension.
	PinkyLiftMinimum float64
	// PinkySeparation is the little-to-ring fingertip distance that counts
	// as the little finger standing apart.
	PinkySeparation float64
	// PinkyStraightness is the minimum cosine between the little finger's
	// proximal and distal segments.
	PinkyStraightness float64

	// FistMaximumExtension is the mean fingertip extension below which the
	// hand counts as a closed fist.
	FistMaximumExtension float64
}

// ArmDelay is how long a reading must stay true before it activates.
func (p Parameters) ArmDelay() time.Duration {
	return p.Debounce + p.Hold
}
