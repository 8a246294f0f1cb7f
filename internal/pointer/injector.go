// Package pointer turns tracked frames into operating system input: cursor
// moves, clicks and the keyboard shortcuts bound to swipes.
package pointer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/gesture"
)

// Button is a mouse button.
type Button uint8

const (
	Left Button = iota
	Right
)

func (b Button) String() string {
	switch b {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

// Injector posts synthetic input. Points are screen coordinates with the
// origin at the top-left of the primary display.
type Injector interface {
	Move(p r2.Vec) error
	Click(b Button, at r2.Vec) error
	// Swipe sends the space-switching shortcut for direction d.
	Swipe(d gesture.Direction) error
}

// swipeKey maps a swipe to the arrow key sent with the control modifier.
func swipeKey(d gesture.Direction) (string, error) {
	switch d {
	case gesture.Left:
		return "left", nil
	case gesture.Right:
		return "right", nil
	case gesture.Up:
		return "up", nil
	case gesture.Down:
		return "down", nil
	}
	return "", fmt.Errorf("no key for swipe direction %v", d)
}
