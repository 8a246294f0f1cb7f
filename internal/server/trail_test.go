package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/tracking"
)

func TestTrail_KeepsNewestPoints(t *testing.T) {
	trail := NewTrail(3)
	for i := 1; i <= 5; i++ {
		trail.HandleFrame(tracking.Frame{Cursor: r2.Vec{X: float64(i)}, HasCursor: true})
	}
	trail.HandleFrame(tracking.Frame{Cursor: r2.Vec{X: 99}})

	want := []r2.Vec{{X: 3}, {X: 4}, {X: 5}}
	if diff := cmp.Diff(want, trail.Points()); diff != "" {
		t.Errorf("Points() mismatch (-want +got):\n%s", diff)
	}
}

func TestTrail_PartialFill(t *testing.T) {
	trail := NewTrail(0)
	trail.HandleFrame(tracking.Frame{Cursor: r2.Vec{X: 1, Y: 2}, HasCursor: true})

	if diff := cmp.Diff([]r2.Vec{{X: 1, Y: 2}}, trail.Points()); diff != "" {
		t.Errorf("Points() mismatch (-want +got):\n%s", diff)
	}
	if got := len(trail.points); got != DefaultTrailLength {
		t.Errorf("capacity = %d, want %d", got, DefaultTrailLength)
	}
}

func TestTrail_ServePNG(t *testing.T) {
	trail := NewTrail(10)
	trail.HandleFrame(tracking.Frame{Cursor: r2.Vec{X: 10, Y: 10}, HasCursor: true})
	trail.HandleFrame(tracking.Frame{Cursor: r2.Vec{X: 200, Y: 120}, HasCursor: true})
	trail.HandleFrame(tracking.Frame{
		Cursor:    r2.Vec{X: 220, Y: 130},
		HasCursor: true,
		Events:    []gesture.Event{{Kind: gesture.LeftClick}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/trajectory.png?w=4&h=3", nil)
	rec := httptest.NewRecorder()
	trail.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestTrail_ServeEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	NewTrail(5).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trajectory.png", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("empty trail status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewTrail(5).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/trajectory.png", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", rec.Code)
	}
}
