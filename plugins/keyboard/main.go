// Package main is a plugin that answers gesture events with keyboard
// shortcuts. It is run by the fingercursor plugin executor with one JSON
// request on stdin and writes one JSON response to stdout.
//
// The shortcut comes from the request params, or from the binding config
// when no params are given:
//
//	{"key": "tab", "modifiers": ["cmd", "shift"]}
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Shortcut is one key with optional modifiers.
type Shortcut struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // cmd, alt, ctrl, shift
}

// modifierMap maps user-friendly modifier names to robotgo's.
var modifierMap = map[string]string{
	"command": "cmd",
	"cmd":     "cmd",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

// tapFunc sends one key press.
type tapFunc func(key string, modifiers ...string) error

func robotgoTap(key string, modifiers ...string) error {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

func main() {
	resp := handle(os.Stdin, robotgoTap)
	json.NewEncoder(os.Stdout).Encode(resp)
}

func handle(r io.Reader, tap tapFunc) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
	}

	switch req.Action {
	case "keystroke", "shortcut":
	default:
		return Response{Error: fmt.Sprintf("unknown action: %s", req.Action)}
	}

	s, err := parseShortcut(req)
	if err != nil {
		return Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)}
	}
	if err := tap(s.Key, s.Modifiers...); err != nil {
		return Response{Error: fmt.Sprintf("%s on %s failed: %v", s, req.Event, err)}
	}
	return Response{Success: true}
}

// parseShortcut reads the shortcut from the params, falling back to the
// binding config, and normalizes the modifier names.
func parseShortcut(req Request) (Shortcut, error) {
	raw := req.Params
	if len(raw) == 0 || string(raw) == "null" {
		raw = req.Config
	}
	if len(raw) == 0 {
		return Shortcut{}, errors.New("no shortcut configured")
	}

	var s Shortcut
	if err := json.Unmarshal(raw, &s); err != nil {
		return Shortcut{}, fmt.Errorf("failed to parse shortcut: %w", err)
	}
	if s.Key == "" {
		return Shortcut{}, errors.New("key is required")
	}

	mods := make([]string, 0, len(s.Modifiers))
	for _, m := range s.Modifiers {
		name, ok := modifierMap[strings.ToLower(m)]
		if !ok {
			return Shortcut{}, fmt.Errorf("unknown modifier %q", m)
		}
		mods = append(mods, name)
	}
	s.Key = strings.ToLower(s.Key)
	s.Modifiers = mods
	return s, nil
}

func (s Shortcut) String() string {
	return strings.Join(append(append([]string{}, s.Modifiers...), s.Key), "+")
}
