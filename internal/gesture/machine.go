package gesture

import (
	"fmt"
	"time"

	"github.com/ayusman/fingercursor/internal/detector"
	"github.com/ayusman/fingercursor/internal/timeutil"
)

// Flag is a held pose tracked by the state machine.
type Flag uint8

const (
	// LeftClickHold follows the raised little finger.
	LeftClickHold Flag = iota
	// TwoFingerHold follows index and middle fingertips pinched together.
	TwoFingerHold
	// PalmOpenHold follows the open palm.
	PalmOpenHold

	numFlags
)

func (f Flag) String() string {
	switch f {
	case LeftClickHold:
		return "left_click_hold"
	case TwoFingerHold:
		return "two_finger_hold"
	case PalmOpenHold:
		return "palm_open_hold"
	}
	return fmt.Sprintf("flag(%d)", uint8(f))
}

// FlagState is the phase of a single flag.
type FlagState uint8

const (
	Idle FlagState = iota
	Arming
	Active
)

func (s FlagState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Arming:
		return "arming"
	case Active:
		return "active"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// DebugState is a display snapshot of the last frame. While the palm is
// open the pinky and two-finger readings are reported as false.
type DebugState struct {
	PinkyRaised     bool `json:"pinky_raised"`
	TwoFingerActive bool `json:"two_finger_active"`
	PalmOpen        bool `json:"palm_open"`
	FistClosed      bool `json:"fist_closed"`
}

// StateMachine debounces pose readings into one-shot events.
//
// It is not safe for concurrent use; the tracker drives it from a single
// worker goroutine.
type StateMachine struct {
	clock timeutil.Clock

	armedAt [numFlags]time.Time
	armed   [numFlags]bool
	active  [numFlags]bool

	lastFired [numKinds]time.Time
	fired     [numKinds]bool

	lastPalm bool
	readings Readings
	debug    DebugState
}

// NewStateMachine returns an idle state machine reading time from clock.
func NewStateMachine(clock timeutil.Clock) *StateMachine {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &StateMachine{clock: clock}
}

// Update classifies s and advances every flag by one frame. Events are
// returned in evaluation order: dictation start, clicks, dictation stop.
func (m *StateMachine) Update(s detector.Sample, p Parameters) []Event {
	if s.Visibility <= VisibilityFloor {
		m.lose()
		return nil
	}

	now := m.clock.Now()
	r := Classify(s, p)
	m.readings = r
	m.debug = DebugState{
		PinkyRaised:     r.PinkyRaised && !r.Palm,
		TwoFingerActive: r.TwoFinger && !r.Palm,
		PalmOpen:        r.Palm,
		FistClosed:      r.Fist,
	}

	var events []Event
	if m.advance(PalmOpenHold, r.Palm, now, p) {
		events = append(events, Event{Kind: DictationStart})
	}

	if r.Palm {
		m.clear(LeftClickHold)
		m.clear(TwoFingerHold)
	} else {
		if m.advance(LeftClickHold, r.PinkyRaised, now, p) && m.admit(LeftClick, now, p.Refractory) {
			events = append(events, Event{Kind: LeftClick})
		}
		if m.advance(TwoFingerHold, r.TwoFinger, now, p) && m.admit(RightClick, now, p.Refractory) {
			events = append(events, Event{Kind: RightClick})
		}
	}

	if m.lastPalm && !r.Palm {
		events = append(events, Event{Kind: DictationStop})
	}
	m.lastPalm = r.Palm

	return events
}

// Reset returns the machine to its initial state, including the
// refractory ledger.
func (m *StateMachine) Reset() {
	m.lose()
	m.lastFired = [numKinds]time.Time{}
	m.fired = [numKinds]bool{}
}

// Debug returns the display snapshot of the last frame.
func (m *StateMachine) Debug() DebugState {
	return m.debug
}

// Readings returns the unmasked classifier output of the last frame.
func (m *StateMachine) Readings() Readings {
	return m.readings
}

// State returns the phase of flag f.
func (m *StateMachine) State(f Flag) FlagState {
	switch {
	case m.active[f]:
		return Active
	case m.armed[f]:
		return Arming
	}
	return Idle
}

// lose clears everything tied to the hand being in view. The refractory
// ledger is kept so a hand flickering out of view cannot double-click.
func (m *StateMachine) lose() {
	for f := Flag(0); f < numFlags; f++ {
		m.clear(f)
	}
	m.lastPalm = false
	m.readings = Readings{}
	m.debug = DebugState{}
}

// advance moves flag f one frame forward and reports whether it became
// active on this frame.
func (m *StateMachine) advance(f Flag, on bool, now time.Time, p Parameters) bool {
	if !on {
		m.clear(f)
		return false
	}
	if !m.armed[f] {
		m.armed[f] = true
		m.armedAt[f] = now
	}
	if m.active[f] || now.Sub(m.armedAt[f]) < p.ArmDelay() {
		return false
	}
	m.active[f] = true
	return true
}

func (m *StateMachine) clear(f Flag) {
	m.armed[f] = false
	m.active[f] = false
	m.armedAt[f] = time.Time{}
}

// admit applies the refractory gate to kind k.
func (m *StateMachine) admit(k Kind, now time.Time, refractory time.Duration) bool {
	if m.fired[k] && now.Sub(m.lastFired[k]) < refractory {
		return false
	}
	m.fired[k] = true
	m.lastFired[k] = now
	return true
}
