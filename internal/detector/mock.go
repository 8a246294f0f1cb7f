package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// curledHand returns a right hand, palm facing the camera, with every
// finger folded onto the palm. The presets below extend fingers from it.
func curledHand() HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.90}

	h.Points[ThumbCMC] = Point3D{X: 0.44, Y: 0.84}
	h.Points[ThumbMCP] = Point3D{X: 0.40, Y: 0.78}
	h.Points[ThumbIP] = Point3D{X: 0.41, Y: 0.72}
	h.Points[ThumbTip] = Point3D{X: 0.44, Y: 0.69}

	h.Points[IndexMCP] = Point3D{X: 0.42, Y: 0.60}
	h.Points[IndexPIP] = Point3D{X: 0.41, Y: 0.56}
	h.Points[IndexDIP] = Point3D{X: 0.43, Y: 0.60}
	h.Points[IndexTip] = Point3D{X: 0.45, Y: 0.645}

	h.Points[MiddleMCP] = Point3D{X: 0.48, Y: 0.58}
	h.Points[MiddlePIP] = Point3D{X: 0.48, Y: 0.54}
	h.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.59}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.63}

	h.Points[RingMCP] = Point3D{X: 0.54, Y: 0.60}
	h.Points[RingPIP] = Point3D{X: 0.54, Y: 0.56}
	h.Points[RingDIP] = Point3D{X: 0.53, Y: 0.60}
	h.Points[RingTip] = Point3D{X: 0.53, Y: 0.64}

	h.Points[PinkyMCP] = Point3D{X: 0.60, Y: 0.63}
	h.Points[PinkyPIP] = Point3D{X: 0.60, Y: 0.59}
	h.Points[PinkyDIP] = Point3D{X: 0.58, Y: 0.62}
	h.Points[PinkyTip] = Point3D{X: 0.56, Y: 0.66}

	return h
}

// FistLandmarks returns a closed fist.
func FistLandmarks() HandLandmarks {
	return curledHand()
}

// PointingLandmarks returns a hand with only the index finger extended,
// the neutral pose used for steering the cursor.
func PointingLandmarks() HandLandmarks {
	h := curledHand()
	h.Points[IndexPIP] = Point3D{X: 0.41, Y: 0.48}
	h.Points[IndexDIP] = Point3D{X: 0.405, Y: 0.37}
	h.Points[IndexTip] = Point3D{X: 0.40, Y: 0.25}
	return h
}

// PinkyRaisedLandmarks returns a hand with only the little finger
// extended straight up, the left-click pose.
func PinkyRaisedLandmarks() HandLandmarks {
	h := curledHand()
	h.Points[PinkyPIP] = Point3D{X: 0.64, Y: 0.52}
	h.Points[PinkyDIP] = Point3D{X: 0.66, Y: 0.465}
	h.Points[PinkyTip] = Point3D{X: 0.68, Y: 0.41}
	return h
}

// TwoFingerLandmarks returns a hand with index and middle fingers
// extended and pressed together, the right-click pose.
func TwoFingerLandmarks() HandLandmarks {
	h := curledHand()
	h.Points[IndexPIP] = Point3D{X: 0.44, Y: 0.48}
	h.Points[IndexDIP] = Point3D{X: 0.46, Y: 0.39}
	h.Points[IndexTip] = Point3D{X: 0.47, Y: 0.30}
	h.Points[MiddlePIP] = Point3D{X: 0.485, Y: 0.47}
	h.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.38}
	h.Points[MiddleTip] = Point3D{X: 0.49, Y: 0.29}
	return h
}

// OpenPalmLandmarks returns an open palm with all fingers spread, the
// dictation pose.
func OpenPalmLandmarks() HandLandmarks {
	h := curledHand()

	h.Points[ThumbIP] = Point3D{X: 0.32, Y: 0.70}
	h.Points[ThumbTip] = Point3D{X: 0.27, Y: 0.64}

	h.Points[IndexPIP] = Point3D{X: 0.40, Y: 0.48}
	h.Points[IndexDIP] = Point3D{X: 0.38, Y: 0.39}
	h.Points[IndexTip] = Point3D{X: 0.36, Y: 0.30}

	h.Points[MiddlePIP] = Point3D{X: 0.475, Y: 0.45}
	h.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.35}
	h.Points[MiddleTip] = Point3D{X: 0.47, Y: 0.26}

	h.Points[RingPIP] = Point3D{X: 0.55, Y: 0.48}
	h.Points[RingDIP] = Point3D{X: 0.56, Y: 0.39}
	h.Points[RingTip] = Point3D{X: 0.57, Y: 0.30}

	h.Points[PinkyPIP] = Point3D{X: 0.63, Y: 0.55}
	h.Points[PinkyDIP] = Point3D{X: 0.66, Y: 0.46}
	h.Points[PinkyTip] = Point3D{X: 0.68, Y: 0.38}

	return h
}
