package pointer

import (
	"fmt"
	"math"

	"github.com/go-vgo/robotgo"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/gesture"
)

// Robotgo injects input through robotgo. It also reports the display
// layout, so it can serve as the tracker's cursor.Screens.
type Robotgo struct{}

// NewRobotgo returns a Robotgo injector.
func NewRobotgo() *Robotgo {
	return &Robotgo{}
}

// Move implements Injector.
func (Robotgo) Move(p r2.Vec) error {
	robotgo.Move(round(p.X), round(p.Y))
	return nil
}

// Click implements Injector.
func (r Robotgo) Click(b Button, at r2.Vec) error {
	if err := r.Move(at); err != nil {
		return err
	}
	robotgo.Click(b.String(), false)
	return nil
}

// Swipe implements Injector.
func (Robotgo) Swipe(d gesture.Direction) error {
	key, err := swipeKey(d)
	if err != nil {
		return err
	}
	if err := robotgo.KeyTap(key, "ctrl"); err != nil {
		return fmt.Errorf("send ctrl+%s: %w", key, err)
	}
	return nil
}

// Displays returns the bounds of every attached display.
func (Robotgo) Displays() []r2.Box {
	n := robotgo.DisplaysNum()
	if n <= 0 {
		w, h := robotgo.GetScreenSize()
		return []r2.Box{{Max: r2.Vec{X: float64(w), Y: float64(h)}}}
	}

	boxes := make([]r2.Box, 0, n)
	for i := 0; i < n; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		boxes = append(boxes, r2.Box{
			Min: r2.Vec{X: float64(x), Y: float64(y)},
			Max: r2.Vec{X: float64(x + w), Y: float64(y + h)},
		})
	}
	return boxes
}

func round(v float64) int {
	return int(math.Round(v))
}
