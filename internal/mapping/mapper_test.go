package mapping

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/detector"
	"github.com/ayusman/fingercursor/internal/filter"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func near(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func screenContext() Context {
	return Context{
		ROI:       UnitROI,
		Screen:    r2.Vec{X: 1000, Y: 500},
		Smoothing: filter.DefaultParams(),
	}
}

func TestMapper_Map(t *testing.T) {
	tests := []struct {
		name   string
		point  r2.Vec
		adjust func(*Context)
		want   r2.Vec
	}{
		{
			name:  "mirrors x and puts raised fingertip near the top",
			point: r2.Vec{X: 0.25, Y: 0.8},
			want:  r2.Vec{X: 750, Y: 100},
		},
		{
			name:  "region of interest",
			point: r2.Vec{X: 0.4, Y: 0.4},
			adjust: func(c *Context) {
				c.ROI = r2.Box{Min: r2.Vec{X: 0.2, Y: 0.2}, Max: r2.Vec{X: 0.6, Y: 0.6}}
			},
			want: r2.Vec{X: 500, Y: 250},
		},
		{
			name:  "empty region maps from the origin",
			point: r2.Vec{X: 0.4, Y: 0.4},
			adjust: func(c *Context) {
				c.ROI = r2.Box{Min: r2.Vec{X: 0.3, Y: 0.3}, Max: r2.Vec{X: 0.3, Y: 0.9}}
			},
			want: r2.Vec{X: 1000, Y: 500},
		},
		{
			name:  "hint blends the vertical position",
			point: r2.Vec{X: 0.25, Y: 0.8},
			adjust: func(c *Context) {
				c.Hint, c.HasHint, c.HintWeight = 1, true, 0.5
			},
			want: r2.Vec{X: 750, Y: 300},
		},
		{
			name:  "hint and weight are clamped",
			point: r2.Vec{X: 0.25, Y: 0.8},
			adjust: func(c *Context) {
				c.Hint, c.HasHint, c.HintWeight = 4, true, 2
			},
			want: r2.Vec{X: 750, Y: 500},
		},
		{
			name:  "hint ignored when absent",
			point: r2.Vec{X: 0.25, Y: 0.8},
			adjust: func(c *Context) {
				c.Hint, c.HintWeight = 1, 1
			},
			want: r2.Vec{X: 750, Y: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := screenContext()
			if tt.adjust != nil {
				tt.adjust(&ctx)
			}
			var m Mapper
			if got := m.Map(tt.point, ctx, t0); !near(got, tt.want) {
				t.Errorf("Map() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapper_SmoothsAndResets(t *testing.T) {
	var m Mapper
	ctx := screenContext()

	first := m.Map(r2.Vec{X: 0.5, Y: 0.5}, ctx, t0)
	raw := r2.Vec{X: 100, Y: 250}
	got := m.Map(r2.Vec{X: 0.9, Y: 0.5}, ctx, t0.Add(16*time.Millisecond))

	if got.X >= first.X || got.X <= raw.X {
		t.Errorf("smoothed x = %v, want between %v and %v", got.X, raw.X, first.X)
	}

	m.Reset()
	if got := m.Map(r2.Vec{X: 0.9, Y: 0.5}, ctx, t0.Add(32*time.Millisecond)); !near(got, raw) {
		t.Errorf("Map() after Reset = %v, want %v", got, raw)
	}
}

func TestOrientationHint(t *testing.T) {
	finger := func(pip, tip r2.Vec) detector.Sample {
		return detector.Sample{IndexMCP: r2.Vec{}, IndexPIP: pip, IndexTip: tip}
	}

	tests := []struct {
		name   string
		sample detector.Sample
		want   float64
		ok     bool
	}{
		{"pointing up", finger(r2.Vec{Y: 0.1}, r2.Vec{Y: 0.2}), 0, true},
		{"pointing down", finger(r2.Vec{Y: -0.1}, r2.Vec{Y: -0.2}), 1, true},
		{"pointing sideways", finger(r2.Vec{X: 0.1}, r2.Vec{X: 0.2}), 0.5, true},
		{"bent forward", finger(r2.Vec{X: 0.1}, r2.Vec{X: 0.1, Y: 0.1}), 0.5 * (1 - math.Sqrt2/2), true},
		{"collapsed segment", finger(r2.Vec{}, r2.Vec{Y: 0.2}), 0, false},
		{"folded back", finger(r2.Vec{Y: 0.1}, r2.Vec{}), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OrientationHint(tt.sample)
			if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("OrientationHint() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHintSmoother(t *testing.T) {
	var h HintSmoother

	if v, ok := h.Update(1, true); !ok || v != 1 {
		t.Fatalf("first Update = %v, %v; want 1, true", v, ok)
	}
	if v, _ := h.Update(0, true); v != 0.75 {
		t.Fatalf("second Update = %v, want 0.75", v)
	}
	if v, ok := h.Update(0.3, false); ok || v != 0 {
		t.Fatalf("absent hint = %v, %v; want cleared", v, ok)
	}
	if v, ok := h.Update(0.4, true); !ok || v != 0.4 {
		t.Errorf("Update after clear = %v, %v; want 0.4, true", v, ok)
	}
}
