package gesture

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/detector"
	"github.com/ayusman/fingercursor/internal/timeutil"
)

var epoch = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

// testParams mirrors the defaults derived from a 25 px pinch.
func testParams() Parameters {
	return Parameters{
		TwoFingerThreshold:   25.0 / 720,
		PalmAreaMinimum:      190.0 / 720,
		Debounce:             120 * time.Millisecond,
		Hold:                 80 * time.Millisecond,
		Refractory:           200 * time.Millisecond,
		PinkyLiftRatio:       1.05,
		PinkyLiftDelta:       0.027,
		PinkyLiftMinimum:     0.092,
		PinkySeparation:      0.0333,
		PinkyStraightness:    0.58,
		FistMaximumExtension: 0.065,
	}
}

func instantParams(refractory time.Duration) Parameters {
	p := testParams()
	p.Debounce = 0
	p.Hold = 0
	p.Refractory = refractory
	return p
}

func mustSample(t *testing.T, h detector.HandLandmarks) detector.Sample {
	t.Helper()
	s, ok := h.Sample()
	if !ok {
		t.Fatal("preset hand rejected")
	}
	return s
}

func events(kinds ...Kind) []Event {
	var out []Event
	for _, k := range kinds {
		out = append(out, Event{Kind: k})
	}
	return out
}

func TestClassify_Presets(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Readings
	}{
		{"fist", detector.FistLandmarks(), Readings{Fist: true}},
		{"pointing", detector.PointingLandmarks(), Readings{}},
		{"pinky raised", detector.PinkyRaisedLandmarks(), Readings{PinkyRaised: true}},
		{"two finger", detector.TwoFingerLandmarks(), Readings{TwoFinger: true}},
		{"open palm", detector.OpenPalmLandmarks(), Readings{Palm: true, PinkyRaised: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(mustSample(t, tt.hand), testParams())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// pinkySample places the palm center at the origin so every extension is
// a plain vector length, with a straight little finger along +y.
func pinkySample(little, ring, index, middle r2.Vec) detector.Sample {
	return detector.Sample{
		IndexTip:   index,
		MiddleTip:  middle,
		RingTip:    ring,
		LittleTip:  little,
		LittleMCP:  r2.Vec{X: 0, Y: 0.02},
		LittlePIP:  r2.Vec{X: 0, Y: 0.06},
		Visibility: 1,
	}
}

func TestClassify_PinkyBranches(t *testing.T) {
	little := r2.Vec{X: 0, Y: 0.10}
	short := [2]r2.Vec{{X: -0.05, Y: 0}, {X: 0, Y: -0.05}}
	long := [2]r2.Vec{{X: -0.12, Y: 0}, {X: 0.12, Y: 0}}

	bent := pinkySample(little, r2.Vec{X: 0.02, Y: 0.095}, short[0], short[1])
	bent.LittlePIP = r2.Vec{X: 0.04, Y: 0.06}

	tests := []struct {
		name   string
		sample detector.Sample
		want   bool
	}{
		// ring and little nearly equal, index and middle curled
		{"ratio only", pinkySample(little, r2.Vec{X: 0.02, Y: 0.095}, short[0], short[1]), true},
		// ring 0.03 shorter and close, others long
		{"delta only", pinkySample(little, r2.Vec{X: 0, Y: 0.07}, long[0], long[1]), true},
		// ring as long as little but spread sideways
		{"separation only", pinkySample(little, r2.Vec{X: 0.05, Y: 0.085}, long[0], long[1]), true},
		{"no branch", pinkySample(little, r2.Vec{X: 0.01, Y: 0.095}, long[0], long[1]), false},
		{"below minimum", pinkySample(r2.Vec{X: 0, Y: 0.08}, r2.Vec{X: 0.02, Y: 0.075}, short[0], short[1]), false},
		{"bent", bent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.sample, testParams())
			if got.PinkyRaised != tt.want {
				t.Errorf("PinkyRaised = %v, want %v", got.PinkyRaised, tt.want)
			}
		})
	}
}

func TestStraightness(t *testing.T) {
	a := r2.Vec{X: 0, Y: 0}
	b := r2.Vec{X: 0, Y: 1}

	if got := Straightness(a, b, r2.Vec{X: 0, Y: 2}); got != 1 {
		t.Errorf("straight finger = %v, want 1", got)
	}
	if got := Straightness(a, b, a); got != -1 {
		t.Errorf("folded finger = %v, want -1", got)
	}
	if got := Straightness(a, a, b); got != 0 {
		t.Errorf("degenerate proximal segment = %v, want 0", got)
	}
	if got := Straightness(a, b, b); got != 0 {
		t.Errorf("degenerate distal segment = %v, want 0", got)
	}
}

func TestStateMachine_Debounce(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	m := NewStateMachine(clock)
	p := testParams()
	pinky := mustSample(t, detector.PinkyRaisedLandmarks())
	pointing := mustSample(t, detector.PointingLandmarks())

	if got := m.Update(pinky, p); len(got) != 0 {
		t.Fatalf("first frame emitted %v", got)
	}
	if m.State(LeftClickHold) != Arming {
		t.Fatalf("state = %v, want arming", m.State(LeftClickHold))
	}

	clock.Advance(p.ArmDelay() - time.Millisecond)
	if got := m.Update(pinky, p); len(got) != 0 {
		t.Fatalf("emitted before debounce+hold: %v", got)
	}

	clock.Advance(2 * time.Millisecond)
	if diff := cmp.Diff(events(LeftClick), m.Update(pinky, p)); diff != "" {
		t.Fatalf("activation mismatch (-want +got):\n%s", diff)
	}
	if m.State(LeftClickHold) != Active {
		t.Fatalf("state = %v, want active", m.State(LeftClickHold))
	}

	for i := 0; i < 5; i++ {
		clock.Advance(100 * time.Millisecond)
		if got := m.Update(pinky, p); len(got) != 0 {
			t.Fatalf("held pose re-fired: %v", got)
		}
	}

	m.Update(pointing, p)
	if m.State(LeftClickHold) != Idle {
		t.Fatalf("state = %v after release, want idle", m.State(LeftClickHold))
	}

	m.Update(pinky, p)
	clock.Advance(p.ArmDelay())
	if diff := cmp.Diff(events(LeftClick), m.Update(pinky, p)); diff != "" {
		t.Errorf("second run mismatch (-want +got):\n%s", diff)
	}
}

func TestStateMachine_Refractory(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	m := NewStateMachine(clock)
	p := instantParams(500 * time.Millisecond)
	pinky := mustSample(t, detector.PinkyRaisedLandmarks())
	pointing := mustSample(t, detector.PointingLandmarks())

	if diff := cmp.Diff(events(LeftClick), m.Update(pinky, p)); diff != "" {
		t.Fatalf("first click mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(50 * time.Millisecond)
	m.Update(pointing, p)
	clock.Advance(50 * time.Millisecond)
	if got := m.Update(pinky, p); len(got) != 0 {
		t.Fatalf("click inside refractory emitted %v", got)
	}

	clock.Advance(50 * time.Millisecond)
	m.Update(pointing, p)
	clock.Advance(450 * time.Millisecond)
	if diff := cmp.Diff(events(LeftClick), m.Update(pinky, p)); diff != "" {
		t.Errorf("click after refractory mismatch (-want +got):\n%s", diff)
	}
}

func TestStateMachine_RefractoryPerKind(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	m := NewStateMachine(clock)
	p := instantParams(time.Second)

	m.Update(mustSample(t, detector.PinkyRaisedLandmarks()), p)
	clock.Advance(10 * time.Millisecond)

	got := m.Update(mustSample(t, detector.TwoFingerLandmarks()), p)
	if diff := cmp.Diff(events(RightClick), got); diff != "" {
		t.Errorf("right click mismatch (-want +got):\n%s", diff)
	}
}

func TestStateMachine_PalmPreemption(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	m := NewStateMachine(clock)
	p := testParams()
	pinky := mustSample(t, detector.PinkyRaisedLandmarks())
	palm := mustSample(t, detector.OpenPalmLandmarks())

	m.Update(pinky, p)
	clock.Advance(150 * time.Millisecond)

	if got := m.Update(palm, p); len(got) != 0 {
		t.Fatalf("palm frame emitted %v", got)
	}
	if m.State(LeftClickHold) != Idle || m.State(TwoFingerHold) != Idle {
		t.Fatalf("click holds not cleared by palm")
	}

	clock.Advance(100 * time.Millisecond)
	got := m.Update(pinky, p)
	if diff := cmp.Diff(events(DictationStop), got); diff != "" {
		t.Errorf("frame after palm mismatch (-want +got):\n%s", diff)
	}
	if m.State(LeftClickHold) != Arming {
		t.Errorf("state = %v, want a fresh arming run", m.State(LeftClickHold))
	}
}

func TestStateMachine_PalmSuppressesInstantClicks(t *testing.T) {
	m := NewStateMachine(timeutil.NewMockClock(epoch))
	p := instantParams(0)

	got := m.Update(mustSample(t, detector.OpenPalmLandmarks()), p)
	if diff := cmp.Diff(events(DictationStart), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStateMachine_Dictation(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	m := NewStateMachine(clock)
	p := testParams()
	palm := mustSample(t, detector.OpenPalmLandmarks())
	pointing := mustSample(t, detector.PointingLandmarks())

	steps := []struct {
		advance time.Duration
		sample  detector.Sample
		want    []Event
	}{
		{0, palm, nil},
		{100 * time.Millisecond, palm, nil},
		{100 * time.Millisecond, palm, events(DictationStart)},
		{500 * time.Millisecond, palm, nil},
		{30 * time.Millisecond, pointing, events(DictationStop)},
		{30 * time.Millisecond, pointing, nil},
	}

	for i, step := range steps {
		clock.Advance(step.advance)
		got := m.Update(step.sample, p)
		if diff := cmp.Diff(step.want, got); diff != "" {
			t.Errorf("step %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestStateMachine_EventOrder(t *testing.T) {
	m := NewStateMachine(timeutil.NewMockClock(epoch))
	p := instantParams(0)

	m.Update(mustSample(t, detector.OpenPalmLandmarks()), p)
	got := m.Update(mustSample(t, detector.PinkyRaisedLandmarks()), p)

	if diff := cmp.Diff(events(LeftClick, DictationStop), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStateMachine_LowVisibility(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	m := NewStateMachine(clock)
	p := instantParams(500 * time.Millisecond)
	pinky := mustSample(t, detector.PinkyRaisedLandmarks())

	m.Update(mustSample(t, detector.OpenPalmLandmarks()), p)
	m.Update(pinky, p)
	if m.State(LeftClickHold) != Active {
		t.Fatalf("state = %v, want active", m.State(LeftClickHold))
	}

	dim := pinky
	dim.Visibility = VisibilityFloor
	clock.Advance(10 * time.Millisecond)
	if got := m.Update(dim, p); got != nil {
		t.Fatalf("low visibility emitted %v", got)
	}
	for f := Flag(0); f < numFlags; f++ {
		if m.State(f) != Idle {
			t.Errorf("%v = %v, want idle", f, m.State(f))
		}
	}
	if m.Debug() != (DebugState{}) {
		t.Errorf("debug = %+v, want zero", m.Debug())
	}

	clock.Advance(10 * time.Millisecond)
	if got := m.Update(pinky, p); len(got) != 0 {
		t.Errorf("refractory ledger lost on low visibility: %v", got)
	}

	m.Reset()
	m.Reset()
	if diff := cmp.Diff(events(LeftClick), m.Update(pinky, p)); diff != "" {
		t.Errorf("after reset mismatch (-want +got):\n%s", diff)
	}
}

func TestStateMachine_DebugMasking(t *testing.T) {
	m := NewStateMachine(timeutil.NewMockClock(epoch))
	m.Update(mustSample(t, detector.OpenPalmLandmarks()), testParams())

	want := DebugState{PalmOpen: true}
	if diff := cmp.Diff(want, m.Debug()); diff != "" {
		t.Errorf("Debug() mismatch (-want +got):\n%s", diff)
	}
	if !m.Readings().PinkyRaised {
		t.Error("Readings() should keep the unmasked pinky reading")
	}
}

func TestSwipeDetector(t *testing.T) {
	at := func(ms int) time.Time { return epoch.Add(time.Duration(ms) * time.Millisecond) }

	t.Run("right", func(t *testing.T) {
		d := NewSwipeDetector()
		if _, ok := d.Update(true, r2.Vec{}, at(0)); ok {
			t.Fatal("rising edge emitted")
		}
		ev, ok := d.Update(true, r2.Vec{X: 200}, at(300))
		if !ok || ev != SwipeEvent(Right) {
			t.Fatalf("got %v %v, want swipe_right", ev, ok)
		}
		if d.Armed() {
			t.Error("origin kept after swipe")
		}
	})

	t.Run("released early", func(t *testing.T) {
		d := NewSwipeDetector()
		d.Update(true, r2.Vec{}, at(0))
		d.Update(true, r2.Vec{X: 100}, at(100))
		if _, ok := d.Update(false, r2.Vec{X: 150}, at(200)); ok {
			t.Fatal("released fist emitted")
		}
		if d.Armed() {
			t.Fatal("origin kept after release")
		}

		d.Update(true, r2.Vec{X: 150}, at(250))
		if _, ok := d.Update(true, r2.Vec{X: 200}, at(300)); ok {
			t.Error("new origin not taken at 250ms")
		}
		ev, ok := d.Update(true, r2.Vec{X: 150, Y: -200}, at(400))
		if !ok || ev != SwipeEvent(Down) {
			t.Errorf("got %v %v, want swipe_down", ev, ok)
		}
	})

	t.Run("too slow", func(t *testing.T) {
		d := NewSwipeDetector()
		d.Update(true, r2.Vec{}, at(0))
		if _, ok := d.Update(true, r2.Vec{X: -300}, at(500)); ok {
			t.Fatal("slow travel emitted")
		}
		ev, ok := d.Update(true, r2.Vec{X: -600}, at(600))
		if !ok || ev != SwipeEvent(Left) {
			t.Errorf("got %v %v, want swipe_left from restarted origin", ev, ok)
		}
	})

	t.Run("tie goes vertical", func(t *testing.T) {
		d := NewSwipeDetector()
		d.Update(true, r2.Vec{}, at(0))
		ev, ok := d.Update(true, r2.Vec{X: 150, Y: 150}, at(100))
		if !ok || ev != SwipeEvent(Up) {
			t.Errorf("got %v %v, want swipe_up", ev, ok)
		}
	})
}

func TestParseEvent(t *testing.T) {
	for _, ev := range AllEvents() {
		got, err := ParseEvent(ev.String())
		if err != nil {
			t.Fatalf("ParseEvent(%q): %v", ev, err)
		}
		if got != ev {
			t.Errorf("ParseEvent(%q) = %v", ev, got)
		}
	}

	for _, name := range []string{"", "swipe", "swipe_sideways", "double_click"} {
		if _, err := ParseEvent(name); !errors.Is(err, ErrUnknownEvent) {
			t.Errorf("ParseEvent(%q) error = %v, want ErrUnknownEvent", name, err)
		}
	}
}

func TestEvent_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Event{"on": SwipeEvent(Up)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"on":"swipe_up"}` {
		t.Errorf("Marshal = %s", data)
	}

	var decoded struct{ On Event }
	if err := json.Unmarshal([]byte(`{"On":"Right_Click"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.On != (Event{Kind: RightClick}) {
		t.Errorf("Unmarshal = %v", decoded.On)
	}
}
