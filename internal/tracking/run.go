package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/fingercursor/internal/detector"
)

// Start opens the camera and begins the capture loop. Starting a running
// tracker is a no-op.
//
// The loop polls at the idle rate until motion or a hand is seen, then at
// the active rate until the scene has been still for the throttle's idle
// timeout. Each frame's first hand is submitted to the worker; frames
// without a hand count toward hand loss.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh != nil {
		return nil
	}
	if t.camera == nil || t.detector == nil {
		return ErrNoSource
	}

	if err := t.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	t.throttle.Reset()
	t.camera.SetFPS(t.throttle.FPS())
	t.Reset()
	if t.enabled {
		t.setStatus(StatusSearching)
	}

	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(ctx, t.stopCh, t.done)

	Logf("Tracking started")
	return nil
}

// Stop ends the capture loop and closes the camera. It is idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	stop, done := t.stopCh, t.done
	t.stopCh, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	if err := t.camera.Close(); err != nil {
		Logf("Error closing camera: %v", err)
	}
	if t.motion != nil {
		t.motion.Reset()
	}

	t.inflight.Wait()
	t.Reset()
	t.setStatus(StatusIdle)
	Logf("Tracking stopped")
}

// Running reports whether the capture loop is active.
func (t *Tracker) Running() bool {
	t.mu.RLock()
	done := t.done
	t.mu.RUnlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (t *Tracker) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.throttle.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
		}

		if !t.Enabled() {
			continue
		}

		if fps, changed := t.poll(); changed {
			t.camera.SetFPS(fps)
			ticker.Reset(t.throttle.Interval())
			Logf("Polling at %d fps", fps)
		}
	}
}

// poll reads and analyzes one camera frame and reports the throttle's
// verdict.
func (t *Tracker) poll() (int, bool) {
	frame, err := t.camera.ReadFrame()
	if err != nil {
		t.metrics.CaptureErrors.Add(1)
		Logf("Error reading frame: %v", err)
		return t.throttle.FPS(), false
	}
	defer frame.Close()
	t.metrics.FramesCaptured.Add(1)

	motion := false
	if t.motion != nil {
		motion, _ = t.motion.Detect(frame)
	}

	hands, err := t.detector.Detect(frame)
	if err != nil {
		t.metrics.DetectErrors.Add(1)
		Logf("Error detecting hands: %v", err)
		return t.throttle.Observe(motion, t.clock.Now())
	}

	sample, ok := detector.FirstSample(hands)
	if ok {
		t.Submit(sample)
	} else {
		t.SubmitLoss()
	}
	return t.throttle.Observe(motion || ok, t.clock.Now())
}
