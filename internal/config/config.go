// Package config holds the user-tunable settings and derives the per-frame
// parameter bundles handed to the gesture, filter and cursor packages.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ayusman/fingercursor/internal/cursor"
	"github.com/ayusman/fingercursor/internal/filter"
	"github.com/ayusman/fingercursor/internal/gesture"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	// maxFileSize bounds config files read from disk.
	maxFileSize = 1 * 1024 * 1024

	// referenceHeight converts pixel thresholds into normalized landmark
	// distances.
	referenceHeight = 720.0

	minPinchPixels = 5.0
	maxPinchPixels = 80.0

	pinkyLiftRatio       = 1.05
	fistMaximumExtension = 0.065
)

// Config is the complete user configuration. It is a value type; use
// Holder to share it between goroutines.
type Config struct {
	Gestures           GestureThresholds `json:"gestures"`
	Smoothing          filter.Params     `json:"smoothing"`
	Cursor             CursorSettings    `json:"cursor"`
	DiagnosticsEnabled bool              `json:"diagnostics_enabled"`
}

// GestureThresholds are the gesture settings as the user sees them.
// Pixel values are relative to a 720 px tall frame.
type GestureThresholds struct {
	// PinchPixels drives every little-finger threshold at once.
	PinchPixels      float64 `json:"pinch_pixels"`
	TwoFingerPixels  float64 `json:"two_finger_pixels"`
	PalmAreaMinimum  float64 `json:"palm_area_minimum"`
	DebounceMillis   int     `json:"debounce_millis"`
	HoldMillis       int     `json:"hold_millis"`
	RefractoryMillis int     `json:"refractory_millis"`
}

// CursorSettings configures pointer acceleration.
type CursorSettings struct {
	BaseGain          float64 `json:"base_gain"`
	AccelerationK     float64 `json:"acceleration_k"`
	VelocityReference float64 `json:"velocity_reference"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Gestures: GestureThresholds{
			PinchPixels:      25,
			TwoFingerPixels:  25,
			PalmAreaMinimum:  190,
			DebounceMillis:   120,
			HoldMillis:       80,
			RefractoryMillis: 200,
		},
		Smoothing: filter.DefaultParams(),
		Cursor: CursorSettings{
			BaseGain:          1.0,
			AccelerationK:     0.35,
			VelocityReference: 950,
		},
	}
}

// Validate reports the first setting that cannot drive the recognizer.
func (c Config) Validate() error {
	g := c.Gestures
	switch {
	case g.PinchPixels <= 0:
		return fmt.Errorf("%w: pinch_pixels must be positive, got %g", ErrInvalid, g.PinchPixels)
	case g.TwoFingerPixels <= 0:
		return fmt.Errorf("%w: two_finger_pixels must be positive, got %g", ErrInvalid, g.TwoFingerPixels)
	case g.PalmAreaMinimum <= 0:
		return fmt.Errorf("%w: palm_area_minimum must be positive, got %g", ErrInvalid, g.PalmAreaMinimum)
	case g.DebounceMillis < 0:
		return fmt.Errorf("%w: debounce_millis must be non-negative, got %d", ErrInvalid, g.DebounceMillis)
	case g.HoldMillis < 0:
		return fmt.Errorf("%w: hold_millis must be non-negative, got %d", ErrInvalid, g.HoldMillis)
	case g.RefractoryMillis < 0:
		return fmt.Errorf("%w: refractory_millis must be non-negative, got %d", ErrInvalid, g.RefractoryMillis)
	}

	s := c.Smoothing
	switch {
	case s.MinCutoff <= 0:
		return fmt.Errorf("%w: min_cutoff must be positive, got %g", ErrInvalid, s.MinCutoff)
	case s.Beta < 0:
		return fmt.Errorf("%w: beta must be non-negative, got %g", ErrInvalid, s.Beta)
	case s.DerivativeCutoff <= 0:
		return fmt.Errorf("%w: derivative_cutoff must be positive, got %g", ErrInvalid, s.DerivativeCutoff)
	}

	k := c.Cursor
	switch {
	case k.BaseGain <= 0:
		return fmt.Errorf("%w: base_gain must be positive, got %g", ErrInvalid, k.BaseGain)
	case k.AccelerationK < 0:
		return fmt.Errorf("%w: acceleration_k must be non-negative, got %g", ErrInvalid, k.AccelerationK)
	case k.VelocityReference <= 0:
		return fmt.Errorf("%w: velocity_reference must be positive, got %g", ErrInvalid, k.VelocityReference)
	}

	return nil
}

// GestureParameters derives the classifier and debounce parameters.
func (c Config) GestureParameters() gesture.Parameters {
	g := c.Gestures

	pinch := min(max(g.PinchPixels, minPinchPixels), maxPinchPixels)
	scale := (pinch - minPinchPixels) / (maxPinchPixels - minPinchPixels)

	return gesture.Parameters{
		TwoFingerThreshold:   g.TwoFingerPixels / referenceHeight,
		PalmAreaMinimum:      g.PalmAreaMinimum / referenceHeight,
		Debounce:             millis(g.DebounceMillis),
		Hold:                 millis(g.HoldMillis),
		Refractory:           millis(g.RefractoryMillis),
		PinkyLiftRatio:       pinkyLiftRatio,
		PinkyLiftDelta:       0.015 + 0.045*scale,
		PinkyLiftMinimum:     0.06 + 0.12*scale,
		PinkySeparation:      0.028 + 0.02*scale,
		PinkyStraightness:    0.5 + 0.3*scale,
		FistMaximumExtension: fistMaximumExtension,
	}
}

// FilterParams returns the fingertip smoothing parameters.
func (c Config) FilterParams() filter.Params {
	return c.Smoothing
}

// CursorParams returns the pointer acceleration parameters.
func (c Config) CursorParams() cursor.Params {
	p := cursor.DefaultParams()
	p.BaseGain = c.Cursor.BaseGain
	p.AccelerationK = c.Cursor.AccelerationK
	p.VelocityReference = c.Cursor.VelocityReference
	return p
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Parse decodes a JSON document over the defaults, so partial documents
// are safe, and validates the result.
func Parse(data []byte) (Config, error) {
	return ParseOver(Default(), data)
}

// ParseOver decodes a JSON document over base. Settings the document does
// not mention keep their value from base.
func ParseOver(base Config, data []byte) (Config, error) {
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a JSON config file over the defaults. The file must have a
// .json extension and be under 1 MB.
func Load(path string) (Config, error) {
	return LoadOver(Default(), path)
}

// LoadOver reads a JSON config file over base, with the same limits as
// Load.
func LoadOver(base Config, path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseOver(base, data)
}

// Holder shares the current Config between the HTTP handlers that edit it
// and the tracker that reads it once per frame.
type Holder struct {
	v atomic.Pointer[Config]
}

// NewHolder returns a Holder initialized with cfg.
func NewHolder(cfg Config) *Holder {
	h := &Holder{}
	h.v.Store(&cfg)
	return h
}

// Config returns a snapshot of the current configuration.
func (h *Holder) Config() Config {
	if cfg := h.v.Load(); cfg != nil {
		return *cfg
	}
	return Default()
}

// Set validates and installs cfg.
func (h *Holder) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	h.v.Store(&cfg)
	return nil
}
