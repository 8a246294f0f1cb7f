package pointer

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/gesture"
)

// Action is one recorded injector call.
type Action struct {
	Op        string
	Button    Button
	At        r2.Vec
	Direction gesture.Direction
}

func (a Action) String() string {
	switch a.Op {
	case "click":
		return fmt.Sprintf("click %s at (%.0f, %.0f)", a.Button, a.At.X, a.At.Y)
	case "swipe":
		return "swipe " + a.Direction.String()
	}
	return fmt.Sprintf("%s (%.0f, %.0f)", a.Op, a.At.X, a.At.Y)
}

// Recorder is an Injector that records calls instead of posting input.
// It backs the dry-run mode and tests.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
	err     error
}

// SetError makes every subsequent call fail with err.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) record(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.actions = append(r.actions, a)
	return nil
}

// Move implements Injector.
func (r *Recorder) Move(p r2.Vec) error {
	return r.record(Action{Op: "move", At: p})
}

// Click implements Injector.
func (r *Recorder) Click(b Button, at r2.Vec) error {
	return r.record(Action{Op: "click", Button: b, At: at})
}

// Swipe implements Injector.
func (r *Recorder) Swipe(d gesture.Direction) error {
	if _, err := swipeKey(d); err != nil {
		return err
	}
	return r.record(Action{Op: "swipe", Direction: d})
}

// Actions returns a copy of the recorded calls.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}
