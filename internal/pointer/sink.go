package pointer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/tracking"
)

// Sink drives an Injector from tracked frames. Clicks land on the frame's
// cursor position. Dictation events are left to other sinks.
type Sink struct {
	injector Injector
	paused   atomic.Bool
}

// NewSink returns a Sink posting through injector.
func NewSink(injector Injector) *Sink {
	return &Sink{injector: injector}
}

// SetPaused stops or resumes input injection.
func (s *Sink) SetPaused(paused bool) {
	s.paused.Store(paused)
}

// Paused reports whether injection is paused.
func (s *Sink) Paused() bool {
	return s.paused.Load()
}

// HandleFrame implements tracking.Sink.
func (s *Sink) HandleFrame(f tracking.Frame) error {
	if s.paused.Load() || !f.HasCursor {
		return nil
	}

	var errs []error
	if err := s.injector.Move(f.Cursor); err != nil {
		errs = append(errs, fmt.Errorf("move cursor: %w", err))
	}

	for _, ev := range f.Events {
		var err error
		switch ev.Kind {
		case gesture.LeftClick:
			err = s.injector.Click(Left, f.Cursor)
		case gesture.RightClick:
			err = s.injector.Click(Right, f.Cursor)
		case gesture.Swipe:
			err = s.injector.Swipe(ev.Direction)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ev, err))
		}
	}
	return errors.Join(errs...)
}
