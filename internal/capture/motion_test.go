package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func solidFrame(value float64) gocv.Mat {
	m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	if value > 0 {
		m.SetTo(gocv.NewScalar(value, value, value, 0))
	}
	return m
}

func TestNewMotionDetector_Threshold(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.0, 1.0},
		{5.0, 5.0},
		{0, DefaultMotionThreshold},
		{-2, DefaultMotionThreshold},
	}

	for _, tt := range tests {
		md := NewMotionDetector(tt.in)
		if got := md.Threshold(); got != tt.want {
			t.Errorf("NewMotionDetector(%v).Threshold() = %v, want %v", tt.in, got, tt.want)
		}
		md.Close()
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	md.SetThreshold(-1.0)
	if got := md.Threshold(); got != 5.0 {
		t.Errorf("Threshold() = %v, want 5", got)
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	a := solidFrame(0)
	defer a.Close()
	b := solidFrame(0)
	defer b.Close()

	if detected, pct := md.Detect(&a); detected || pct != 0 {
		t.Errorf("first frame = %v, %v; want false, 0", detected, pct)
	}
	if detected, pct := md.Detect(&b); detected {
		t.Errorf("identical frames detected motion, changed = %v", pct)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(0)
	defer black.Close()
	white := solidFrame(255)
	defer white.Close()

	md.Detect(&black)
	detected, pct := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changed = %v", pct)
	}
	if pct < 50 {
		t.Errorf("changed = %v, want > 50", pct)
	}
}

func TestMotionDetector_ResetAndClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)

	black := solidFrame(0)
	defer black.Close()
	white := solidFrame(255)
	defer white.Close()

	md.Detect(&black)
	md.Reset()
	if md.primed || !md.prev.Empty() {
		t.Fatal("Reset should drop the previous frame")
	}
	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should only prime the detector")
	}

	md.Close()
	md.Close()
	if detected, _ := md.Detect(&black); detected {
		t.Error("first frame after Close should only prime the detector")
	}
	md.Close()
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, pct := md.Detect(nil); detected || pct != 0 {
		t.Errorf("Detect(nil) = %v, %v", detected, pct)
	}
}
