package server

import (
	"image/color"
	"net/http"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/fingercursor/internal/tracking"
)

// DefaultTrailLength is the number of cursor positions a Trail keeps.
const DefaultTrailLength = 300

// Trail remembers recent cursor positions and where events fired, and
// renders them as a PNG for tuning smoothing and gain.
type Trail struct {
	mu     sync.Mutex
	points []r2.Vec
	next   int
	full   bool
	events []r2.Vec
}

// NewTrail returns a Trail holding up to n positions. n <= 0 uses
// DefaultTrailLength.
func NewTrail(n int) *Trail {
	if n <= 0 {
		n = DefaultTrailLength
	}
	return &Trail{points: make([]r2.Vec, n)}
}

// HandleFrame implements tracking.Sink.
func (t *Trail) HandleFrame(f tracking.Frame) error {
	if !f.HasCursor {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.points[t.next] = f.Cursor
	t.next = (t.next + 1) % len(t.points)
	if t.next == 0 {
		t.full = true
	}
	if len(f.Events) > 0 {
		t.events = append(t.events, f.Cursor)
		if len(t.events) > len(t.points) {
			t.events = t.events[len(t.events)-len(t.points):]
		}
	}
	return nil
}

// Points returns the stored positions, oldest first.
func (t *Trail) Points() []r2.Vec {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.full {
		return append([]r2.Vec(nil), t.points[:t.next]...)
	}
	out := make([]r2.Vec, 0, len(t.points))
	out = append(out, t.points[t.next:]...)
	return append(out, t.points[:t.next]...)
}

func (t *Trail) eventPoints() []r2.Vec {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]r2.Vec(nil), t.events...)
}

func toXYs(pts []r2.Vec) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// Plot draws the trail. The y axis is inverted so the picture matches the
// screen.
func (t *Trail) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Cursor trail"
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	if pts := t.Points(); len(pts) > 1 {
		line, err := plotter.NewLine(toXYs(pts))
		if err != nil {
			return nil, err
		}
		line.Color = color.RGBA{R: 30, G: 90, B: 200, A: 255}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("cursor", line)
	}

	if evs := t.eventPoints(); len(evs) > 0 {
		scatter, err := plotter.NewScatter(toXYs(evs))
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 220, G: 40, B: 40, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("events", scatter)
	}

	p.Legend.Top = true
	return p, nil
}

// ServeHTTP renders the trail as PNG. Optional w and h query parameters
// set the size in inches.
func (t *Trail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	width := inches(r.URL.Query().Get("w"), 8)
	height := inches(r.URL.Query().Get("h"), 5)

	p, err := t.Plot()
	if err != nil {
		http.Error(w, "Failed to plot trail", http.StatusInternalServerError)
		return
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		http.Error(w, "Failed to render trail", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	wt.WriteTo(w)
}

func inches(s string, def float64) vg.Length {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 1 || v > 20 {
		v = def
	}
	return vg.Length(v) * vg.Inch
}
