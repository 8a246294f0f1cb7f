// Package gesture turns landmark samples into discrete gesture events.
//
// Classify derives per-frame boolean readings from a sample. StateMachine
// debounces those readings into one-shot click and dictation events, and
// SwipeDetector watches a closed fist travel across the screen. None of
// the types here perform I/O; timestamps come from an injected clock.
package gesture

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEvent is returned when parsing an unrecognized event name.
var ErrUnknownEvent = errors.New("unknown gesture event")

// Kind identifies a discrete gesture event.
type Kind uint8

const (
	// LeftClick is emitted when a raised little finger has been held.
	LeftClick Kind = iota
	// RightClick is emitted when index and middle fingertips have been held together.
	RightClick
	// DictationStart is emitted when an open palm has been held.
	DictationStart
	// DictationStop is emitted on the first frame the palm is no longer open.
	DictationStop
	// Swipe is emitted when a closed fist travels far enough, fast enough.
	Swipe

	numKinds
)

var kindNames = [numKinds]string{
	LeftClick:      "left_click",
	RightClick:     "right_click",
	DictationStart: "dictation_start",
	DictationStop:  "dictation_stop",
	Swipe:          "swipe",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Direction is the dominant axis of travel of a swipe.
type Direction uint8

const (
	// NoDirection is used by every event kind except Swipe.
	NoDirection Direction = iota
	Left
	Right
	Up
	Down
)

var directionNames = [...]string{
	NoDirection: "",
	Left:        "left",
	Right:       "right",
	Up:          "up",
	Down:        "down",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Event is one discrete gesture event.
type Event struct {
	Kind      Kind
	Direction Direction
}

// SwipeEvent returns a Swipe event in direction d.
func SwipeEvent(d Direction) Event {
	return Event{Kind: Swipe, Direction: d}
}

// String returns the event's stable name, e.g. "right_click" or "swipe_up".
func (e Event) String() string {
	if e.Kind == Swipe {
		return e.Kind.String() + "_" + e.Direction.String()
	}
	return e.Kind.String()
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Event) UnmarshalText(text []byte) error {
	parsed, err := ParseEvent(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseEvent parses a name produced by Event.String.
func ParseEvent(name string) (Event, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if rest, ok := strings.CutPrefix(name, kindNames[Swipe]+"_"); ok {
		for d := Left; d <= Down; d++ {
			if directionNames[d] == rest {
				return SwipeEvent(d), nil
			}
		}
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}

	for k := LeftClick; k < Swipe; k++ {
		if kindNames[k] == name {
			return Event{Kind: k}, nil
		}
	}
	return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// AllEvents lists every event the recognizer can emit.
func AllEvents() []Event {
	return []Event{
		{Kind: LeftClick},
		{Kind: RightClick},
		{Kind: DictationStart},
		{Kind: DictationStop},
		SwipeEvent(Left),
		SwipeEvent(Right),
		SwipeEvent(Up),
		SwipeEvent(Down),
	}
}
