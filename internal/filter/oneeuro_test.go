package filter

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

const epsilon = 1e-9

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestOneEuro_FirstSamplePassesThrough(t *testing.T) {
	var f OneEuro
	if f.Primed() {
		t.Fatal("zero filter should not be primed")
	}

	p := r2.Vec{X: 812.5, Y: 431.25}
	got := f.Filter(p, t0, DefaultParams())
	if got != p {
		t.Errorf("first Filter() = %v, want %v", got, p)
	}
	if !f.Primed() {
		t.Error("filter should be primed after first sample")
	}
}

func TestOneEuro_MatchesReferenceFormula(t *testing.T) {
	params := Params{MinCutoff: 1.2, Beta: 0.007, DerivativeCutoff: 1.0}

	var f OneEuro
	f.Filter(r2.Vec{X: 100, Y: 200}, t0, params)
	got := f.Filter(r2.Vec{X: 110, Y: 190}, t0.Add(33*time.Millisecond), params)

	dt := 0.033
	a := func(cutoff float64) float64 {
		tau := 1 / (2 * math.Pi * cutoff)
		return 1 / (1 + tau/dt)
	}
	dx := r2.Vec{X: 10 / dt, Y: -10 / dt}
	ad := a(1.0)
	edx := r2.Vec{X: ad * dx.X, Y: ad * dx.Y}
	cutoff := 1.2 + 0.007*math.Hypot(edx.X, edx.Y)
	ac := a(cutoff)
	want := r2.Vec{X: ac*110 + (1-ac)*100, Y: ac*190 + (1-ac)*200}

	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestOneEuro_ConvergesOnConstantInput(t *testing.T) {
	params := DefaultParams()

	var f OneEuro
	f.Filter(r2.Vec{X: 0, Y: 0}, t0, params)

	target := r2.Vec{X: 500, Y: 300}
	var got r2.Vec
	at := t0
	for i := 0; i < 600; i++ {
		at = at.Add(16 * time.Millisecond)
		got = f.Filter(target, at, params)
	}

	if math.Abs(got.X-target.X) > 1e-3 || math.Abs(got.Y-target.Y) > 1e-3 {
		t.Errorf("after 600 frames Filter() = %v, want close to %v", got, target)
	}
}

func TestOneEuro_DuplicateTimestampUsesMinimumInterval(t *testing.T) {
	params := DefaultParams()

	var f OneEuro
	f.Filter(r2.Vec{X: 0, Y: 0}, t0, params)
	got := f.Filter(r2.Vec{X: 10, Y: 0}, t0, params)

	if math.IsNaN(got.X) || math.IsInf(got.X, 0) {
		t.Fatalf("Filter() with dt=0 produced %v", got)
	}
	if got.X <= 0 || got.X >= 10 {
		t.Errorf("Filter() = %v, want X strictly between 0 and 10", got)
	}
}

func TestOneEuro_FasterMotionFollowsCloser(t *testing.T) {
	params := Params{MinCutoff: 1.0, Beta: 0.05, DerivativeCutoff: 1.0}

	lag := func(step float64) float64 {
		var f OneEuro
		at := t0
		f.Filter(r2.Vec{}, at, params)
		var out r2.Vec
		var in r2.Vec
		for i := 1; i <= 10; i++ {
			at = at.Add(20 * time.Millisecond)
			in = r2.Vec{X: step * float64(i)}
			out = f.Filter(in, at, params)
		}
		return (in.X - out.X) / in.X
	}

	slow := lag(1)
	fast := lag(50)
	if fast >= slow {
		t.Errorf("relative lag fast=%f should be smaller than slow=%f", fast, slow)
	}
}

func TestOneEuro_Reset(t *testing.T) {
	params := DefaultParams()

	var f OneEuro
	f.Filter(r2.Vec{X: 1, Y: 1}, t0, params)
	f.Filter(r2.Vec{X: 2, Y: 2}, t0.Add(10*time.Millisecond), params)

	f.Reset()
	if f.Primed() {
		t.Error("filter should not be primed after Reset")
	}

	p := r2.Vec{X: 900, Y: 900}
	if got := f.Filter(p, t0.Add(time.Second), params); got != p {
		t.Errorf("Filter() after Reset = %v, want %v", got, p)
	}
}
