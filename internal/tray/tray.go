// Package tray provides the menu bar interface: recognition and cursor
// toggles, the live tracking status and the last gesture.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/fingercursor/internal/tracking"
)

// Tray represents the system tray application. It doubles as a
// tracking.Sink so the menu follows the tracker.
type Tray struct {
	onToggle      func(enabled bool)
	onPauseCursor func(paused bool)
	onSettings    func()
	onQuit        func()

	mu        sync.RWMutex
	enabled   bool
	paused    bool
	status    tracking.Status
	lastEvent string

	// Menu items stored for later updates
	menuStatus    *systray.MenuItem
	menuToggle    *systray.MenuItem
	menuPause     *systray.MenuItem
	menuLastEvent *systray.MenuItem
}

// New creates a new Tray with recognition enabled and the cursor live.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback run when recognition is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnPauseCursor sets the callback run when cursor control is paused or
// resumed. Gestures are still recognized while paused.
func (t *Tray) OnPauseCursor(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPauseCursor = fn
}

// OnSettings sets the callback run when the settings item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback run when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops a running tray.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("☝")
	systray.SetTooltip("fingercursor")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(statusTitle(t.status), "Tracking status")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture recognition")
	t.menuPause = systray.AddMenuItem(pauseTitle(t.paused), "Stop moving the system cursor")
	systray.AddSeparator()

	t.menuLastEvent = systray.AddMenuItem(lastEventTitle(t.lastEvent), "Last recognized gesture")
	t.menuLastEvent.Disable()
	systray.AddSeparator()
	t.mu.Unlock()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit fingercursor")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Recognition on"
	}
	return "○ Recognition off"
}

func pauseTitle(paused bool) string {
	if paused {
		return "Resume cursor"
	}
	return "Pause cursor"
}

func statusTitle(s tracking.Status) string {
	return "Status: " + s.String()
}

func lastEventTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handlePause() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused
	if t.menuPause != nil {
		t.menuPause.SetTitle(pauseTitle(paused))
	}
	callback := t.onPauseCursor
	t.mu.Unlock()

	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// HandleFrame implements tracking.Sink. Menu titles change only when the
// status or the last event does.
func (t *Tray) HandleFrame(f tracking.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if f.Status != t.status {
		t.status = f.Status
		if t.menuStatus != nil {
			t.menuStatus.SetTitle(statusTitle(f.Status))
		}
	}
	if n := len(f.Events); n > 0 {
		t.lastEvent = f.Events[n-1].String()
		if t.menuLastEvent != nil {
			t.menuLastEvent.SetTitle(lastEventTitle(t.lastEvent))
		}
	}
	return nil
}

// SetEnabled mirrors a recognition change made elsewhere, such as the HTTP API.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the recognition state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// IsCursorPaused returns whether cursor control is paused.
func (t *Tray) IsCursorPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// LastEvent returns the name of the last gesture event seen.
func (t *Tray) LastEvent() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastEvent
}

// Status returns the last tracking status seen.
func (t *Tray) Status() tracking.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
